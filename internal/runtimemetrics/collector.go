// Package runtimemetrics records built-in metrics about the aggregation loop
// and the Go runtime into a registry.
package runtimemetrics

import (
	"runtime/metrics"
	"sync"
	"time"

	"git.home.luguber.info/inful/metricscope/internal/cycle"
	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// Metric names recorded by the Collector.
const (
	CycleTime       = "cycle_time"
	CyclesPerSecond = "cycles_per_second"
	Goroutines      = "runtime::goroutines"
	HeapAlloc       = "runtime::heap_alloc"
	GCRuns          = "runtime::gc_runs"
)

const (
	sampleGoroutines = "/sched/goroutines:goroutines"
	sampleHeap       = "/memory/classes/heap/objects:bytes"
	sampleGCCycles   = "/gc/cycles/total:gc-cycles"
)

// Collector records the cycle time, cycle rate and a few runtime statistics
// at the end of every cycle. Cycle time is the time between the starts of
// consecutive cycles, so the first cycle only records runtime statistics.
type Collector struct {
	cycleGauge *registry.GaugeCell
	cycleHist  *registry.HistogramCell
	rate       *registry.GaugeCell
	goroutines *registry.GaugeCell
	heap       *registry.GaugeCell
	gcRuns     *registry.CounterCell

	mu        sync.Mutex
	lastStart time.Time
	samples   []metrics.Sample
}

// New describes the built-in metrics on reg and returns a collector that
// records them.
func New(reg *registry.Registry) *Collector {
	reg.Describe(CycleTime, registry.KindGauge, registry.UnitMilliseconds, "Time between aggregation cycles")
	reg.Describe(CycleTime, registry.KindHistogram, registry.UnitMilliseconds, "Time between aggregation cycles")
	reg.Describe(CyclesPerSecond, registry.KindGauge, registry.UnitCountPerSecond, "Aggregation cycles per second")
	reg.Describe(Goroutines, registry.KindGauge, registry.UnitCount, "Number of live goroutines")
	reg.Describe(HeapAlloc, registry.KindGauge, registry.UnitBytes, "Bytes of live and unswept heap objects")
	reg.Describe(GCRuns, registry.KindCounter, registry.UnitCount, "Completed garbage collection cycles")

	return &Collector{
		cycleGauge: reg.GetOrCreateGauge(registry.NewKey(CycleTime)),
		cycleHist:  reg.GetOrCreateHistogram(registry.NewKey(CycleTime)),
		rate:       reg.GetOrCreateGauge(registry.NewKey(CyclesPerSecond)),
		goroutines: reg.GetOrCreateGauge(registry.NewKey(Goroutines)),
		heap:       reg.GetOrCreateGauge(registry.NewKey(HeapAlloc)),
		gcRuns:     reg.GetOrCreateCounter(registry.NewKey(GCRuns)),
		samples: []metrics.Sample{
			{Name: sampleGoroutines},
			{Name: sampleHeap},
			{Name: sampleGCCycles},
		},
	}
}

// Observe records the metrics for a finished cycle. Register it with
// cycle.Driver.OnEndOfCycle.
func (c *Collector) Observe(stats cycle.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastStart.IsZero() {
		if delta := stats.Start.Sub(c.lastStart); delta > 0 {
			ms := float64(delta.Microseconds()) / 1000
			c.cycleGauge.Set(ms)
			c.cycleHist.Record(ms)
			c.rate.Set(1 / delta.Seconds())
		}
	}
	c.lastStart = stats.Start

	metrics.Read(c.samples)
	for _, s := range c.samples {
		if s.Value.Kind() != metrics.KindUint64 {
			continue
		}
		v := s.Value.Uint64()
		switch s.Name {
		case sampleGoroutines:
			c.goroutines.Set(float64(v))
		case sampleHeap:
			c.heap.Set(float64(v))
		case sampleGCCycles:
			c.gcRuns.Absolute(v)
		}
	}
}
