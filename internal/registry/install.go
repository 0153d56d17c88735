package registry

import (
	"log/slog"
	"sync"
	"sync/atomic"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/logfields"
)

// ErrRecorderInstalled reports that a default recorder is already installed.
// It is a benign conflict: callers that deliberately share a registry ignore it.
var ErrRecorderInstalled = ferrors.ConflictError("default recorder already installed").Build()

var (
	installMu sync.Mutex
	installed atomic.Pointer[Registry]
)

// Install binds r as the process-wide target of the ambient recording
// functions. Only the first call succeeds; later calls return
// ErrRecorderInstalled and leave the installed registry untouched.
func Install(r *Registry) error {
	if r == nil {
		return ferrors.ValidationError("registry cannot be nil").Build()
	}
	installMu.Lock()
	defer installMu.Unlock()
	if cur := installed.Load(); cur != nil {
		if cur == r {
			return nil
		}
		return ErrRecorderInstalled
	}
	installed.Store(r)
	return nil
}

// InstallOrShare is Install for callers that deliberately share a registry
// that may already be installed elsewhere. A conflict is logged and ignored.
func InstallOrShare(r *Registry) {
	if err := Install(r); err != nil {
		slog.Debug("Default recorder already installed, sharing existing registry", logfields.Error(err))
	}
}

// Default returns the installed registry, or nil when none is installed.
func Default() *Registry { return installed.Load() }

// Discard cells absorb recordings made before any registry is installed.
var (
	discardCounter   CounterCell
	discardGauge     GaugeCell
	discardHistogram = HistogramCell{discard: true}
)

// Counter returns the default registry's counter for name and label pairs.
func Counter(name string, labels ...string) *CounterCell {
	if r := Default(); r != nil {
		return r.GetOrCreateCounter(KeyFromPairs(name, labels...))
	}
	return &discardCounter
}

// Gauge returns the default registry's gauge for name and label pairs.
func Gauge(name string, labels ...string) *GaugeCell {
	if r := Default(); r != nil {
		return r.GetOrCreateGauge(KeyFromPairs(name, labels...))
	}
	return &discardGauge
}

// Histogram returns the default registry's histogram for name and label pairs.
func Histogram(name string, labels ...string) *HistogramCell {
	if r := Default(); r != nil {
		return r.GetOrCreateHistogram(KeyFromPairs(name, labels...))
	}
	return &discardHistogram
}

// DescribeCounter describes a counter family on the default registry.
func DescribeCounter(name string, unit Unit, text string) { describe(name, KindCounter, unit, text) }

// DescribeGauge describes a gauge family on the default registry.
func DescribeGauge(name string, unit Unit, text string) { describe(name, KindGauge, unit, text) }

// DescribeHistogram describes a histogram family on the default registry.
func DescribeHistogram(name string, unit Unit, text string) {
	describe(name, KindHistogram, unit, text)
}

func describe(name string, kind Kind, unit Unit, text string) {
	if r := Default(); r != nil {
		r.Describe(name, kind, unit, text)
	}
}
