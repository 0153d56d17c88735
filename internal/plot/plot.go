// Package plot turns registry cells into displayable series.
//
// A Plot pulls the current value of its metric once per aggregation cycle.
// Counters and gauges keep a window of recent values in a ring buffer, gauges
// after exponential smoothing. Histograms keep bucket counts computed by a
// histogram.Aggregator. Readers may call the accessors concurrently with
// Update.
package plot

import (
	"slices"
	"sync"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/histogram"
	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// Plot is the aggregated view of one metric.
type Plot struct {
	title string
	key   registry.MetricKey
	unit  registry.Unit

	mu   sync.RWMutex
	data series
}

// New creates a plot of key backed by the cells of reg. A nil config selects
// DefaultConfig for the key's kind; a config of another kind is rejected.
func New(reg *registry.Registry, title string, key registry.MetricKey, unit registry.Unit, cfg Config) (*Plot, error) {
	if reg == nil {
		return nil, ferrors.ValidationError("registry is required").Build()
	}
	if cfg == nil {
		cfg = DefaultConfig(key.Kind)
	}
	if err := checkKind(key, cfg); err != nil {
		return nil, err
	}
	cfg = cfg.normalize()

	var data series
	switch c := cfg.(type) {
	case CounterConfig:
		data = newCounterSeries(reg.GetOrCreateCounter(key.Key), c)
	case GaugeConfig:
		data = newGaugeSeries(reg.GetOrCreateGauge(key.Key), c)
	case HistogramConfig:
		hs, err := newHistogramSeries(reg.GetOrCreateHistogram(key.Key), c)
		if err != nil {
			return nil, err
		}
		data = hs
	}
	return &Plot{title: title, key: key, unit: unit, data: data}, nil
}

func checkKind(key registry.MetricKey, cfg Config) error {
	if cfg.Kind() != key.Kind {
		return ferrors.ValidationError("plot config does not match metric kind").
			WithContext("metric", key.String()).
			WithContext("config_kind", cfg.Kind().String()).
			Build()
	}
	return nil
}

// Title returns the display title.
func (p *Plot) Title() string { return p.title }

// Key returns the plotted metric.
func (p *Plot) Key() registry.MetricKey { return p.key }

// Unit returns the unit used for axis labels.
func (p *Plot) Unit() registry.Unit { return p.unit }

// Kind returns the metric kind.
func (p *Plot) Kind() registry.Kind { return p.key.Kind }

// Update pulls the latest state of the metric. Histogram plots consume the
// raw samples recorded since the last cycle; they must be updated before the
// samples are cleared.
func (p *Plot) Update() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.update()
}

// Config returns a copy of the current configuration.
func (p *Plot) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg := p.data.config()
	if hc, ok := cfg.(HistogramConfig); ok {
		hc.Buckets.Bounds = slices.Clone(hc.Buckets.Bounds)
		if hc.Buckets.Range != nil {
			r := *hc.Buckets.Range
			hc.Buckets.Range = &r
		}
		return hc
	}
	return cfg
}

// Configure replaces the configuration. Invalid configurations are rejected
// and the previous one stays in effect. Changing a window keeps the newest
// values; changing histogram buckets resets the counts.
func (p *Plot) Configure(cfg Config) error {
	if cfg == nil {
		return ferrors.ValidationError("plot config is required").Build()
	}
	if err := checkKind(p.key, cfg); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.configure(cfg.normalize())
}

// ApplyGlobalWindow sets the window size of counter and gauge plots,
// clamped to the allowed range. Histogram plots are unaffected.
func (p *Plot) ApplyGlobalWindow(size int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data.setWindow(ClampWindowSize(size))
}

// Points returns the series of a counter or gauge plot, oldest first, with
// the derivative applied when configured. Histogram plots have no points.
func (p *Plot) Points() []Point {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch s := p.data.(type) {
	case *counterSeries:
		return s.points()
	case *gaugeSeries:
		return s.points()
	default:
		return nil
	}
}

// Latest returns the newest value of a counter or gauge plot.
func (p *Plot) Latest() (float64, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch s := p.data.(type) {
	case *counterSeries:
		v, ok := s.ring.Latest()
		return float64(v), ok
	case *gaugeSeries:
		return s.ring.Latest()
	default:
		return 0, false
	}
}

// Len returns the number of values in the window of a counter or gauge plot.
func (p *Plot) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch s := p.data.(type) {
	case *counterSeries:
		return s.ring.Len()
	case *gaugeSeries:
		return s.ring.Len()
	default:
		return 0
	}
}

// Counts returns the bucket counts of a histogram plot.
func (p *Plot) Counts() []uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.data.(*histogramSeries); ok {
		return s.agg.Counts()
	}
	return nil
}

// Bounds returns the bucket boundaries of a histogram plot.
func (p *Plot) Bounds() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.data.(*histogramSeries); ok {
		return s.agg.Bounds()
	}
	return nil
}

// Bars returns the bar chart of a histogram plot.
func (p *Plot) Bars() []histogram.Bar {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if s, ok := p.data.(*histogramSeries); ok {
		return s.agg.Bars()
	}
	return nil
}
