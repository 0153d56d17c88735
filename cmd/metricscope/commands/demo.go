package commands

import (
	"math/rand/v2"

	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// demoPaths are the synthetic metric names. Every valid path is recorded as
// a counter, gauge and histogram.
var demoPaths = []string{
	"foo::bar::baz",
	"foo::bar::fizz",
	"foo::foo::baz",
	"fizz::bat",
}

// demoCounters are recorded as counters only.
var demoCounters = []string{
	"fizz::partial::collapsed",
	"fully::collapsed::path",
}

// malformedPaths are recorded but never shown in the namespace tree.
var malformedPaths = []string{
	"edge::case::",
	"edge::::case",
	"edge:::case",
	"::edge",
	"::edge::",
	":edge",
	"edge:",
	":edge:",
	"::",
	":",
	"",
}

func describeDemo(reg *registry.Registry) {
	for _, name := range demoPaths {
		reg.Describe(name, registry.KindCounter, registry.UnitCount, "Synthetic counter")
		reg.Describe(name, registry.KindGauge, registry.UnitCount, "Synthetic gauge")
		reg.Describe(name, registry.KindHistogram, registry.UnitCount, "Synthetic histogram")
	}
	for _, name := range demoCounters {
		reg.Describe(name, registry.KindCounter, registry.UnitCount, "Synthetic counter")
	}
	for _, name := range malformedPaths {
		reg.Describe(name, registry.KindCounter, registry.UnitCount, "Malformed namespace path")
	}
}

// produceDemo records one random update of every demo metric.
func produceDemo(reg *registry.Registry, rng *rand.Rand) {
	for _, name := range demoPaths {
		key := registry.NewKey(name)
		reg.GetOrCreateCounter(key).Increment(rng.Uint64N(10))
		reg.GetOrCreateGauge(key).Set(rng.Float64() * 10)
		reg.GetOrCreateHistogram(key).Record(rng.Float64() * 10)
	}
	for _, name := range demoCounters {
		reg.GetOrCreateCounter(registry.NewKey(name)).Increment(rng.Uint64N(10))
	}
	for _, name := range malformedPaths {
		reg.GetOrCreateCounter(registry.NewKey(name)).Increment(rng.Uint64N(10))
	}
}

// seedDemo describes the demo metrics and records them once.
func seedDemo(reg *registry.Registry) {
	describeDemo(reg)
	produceDemo(reg, rand.New(rand.NewPCG(1, 2)))
}
