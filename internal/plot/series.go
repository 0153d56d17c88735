package plot

import (
	"git.home.luguber.info/inful/metricscope/internal/histogram"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/ring"
)

// series is the kind-specific state behind a Plot.
type series interface {
	update()
	config() Config
	configure(Config) error
	setWindow(n int)
}

type counterSeries struct {
	source *registry.CounterCell
	ring   *ring.Ring[uint64]
	cfg    CounterConfig
}

func newCounterSeries(source *registry.CounterCell, cfg CounterConfig) *counterSeries {
	return &counterSeries{source: source, ring: ring.New[uint64](cfg.WindowSize), cfg: cfg}
}

func (s *counterSeries) update()        { s.ring.Push(s.source.Value()) }
func (s *counterSeries) config() Config { return s.cfg }

func (s *counterSeries) configure(c Config) error {
	s.cfg = c.(CounterConfig)
	s.ring.SetCapacity(s.cfg.WindowSize)
	return nil
}

func (s *counterSeries) setWindow(n int) {
	s.cfg.WindowSize = n
	s.ring.SetCapacity(n)
}

func (s *counterSeries) points() []Point {
	points := make([]Point, 0, s.ring.Len())
	for v := range s.ring.All() {
		points = append(points, Point{X: float64(len(points)), Y: float64(v)})
	}
	if s.cfg.Derivative {
		points = Derivative(points)
	}
	return points
}

type gaugeSeries struct {
	source   *registry.GaugeCell
	smoother *Smoother
	ring     *ring.Ring[float64]
	cfg      GaugeConfig
}

func newGaugeSeries(source *registry.GaugeCell, cfg GaugeConfig) *gaugeSeries {
	return &gaugeSeries{
		source:   source,
		smoother: NewSmoother(cfg.SmoothingWeight),
		ring:     ring.New[float64](cfg.WindowSize),
		cfg:      cfg,
	}
}

func (s *gaugeSeries) update()        { s.ring.Push(s.smoother.Add(s.source.Value())) }
func (s *gaugeSeries) config() Config { return s.cfg }

func (s *gaugeSeries) configure(c Config) error {
	s.cfg = c.(GaugeConfig)
	s.ring.SetCapacity(s.cfg.WindowSize)
	s.smoother.SetWeight(s.cfg.SmoothingWeight)
	return nil
}

func (s *gaugeSeries) setWindow(n int) {
	s.cfg.WindowSize = n
	s.ring.SetCapacity(n)
}

func (s *gaugeSeries) points() []Point {
	points := make([]Point, 0, s.ring.Len())
	for v := range s.ring.All() {
		points = append(points, Point{X: float64(len(points)), Y: v})
	}
	if s.cfg.Derivative {
		points = Derivative(points)
	}
	return points
}

type histogramSeries struct {
	source *registry.HistogramCell
	agg    *histogram.Aggregator
	cfg    HistogramConfig
}

func newHistogramSeries(source *registry.HistogramCell, cfg HistogramConfig) (*histogramSeries, error) {
	bounds, err := cfg.Buckets.Resolve()
	if err != nil {
		return nil, err
	}
	agg, err := histogram.New(bounds, cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	return &histogramSeries{source: source, agg: agg, cfg: cfg}, nil
}

func (s *histogramSeries) update()        { s.agg.Update(s.source) }
func (s *histogramSeries) config() Config { return s.cfg }

// configure validates the buckets before touching any state, so a rejected
// config leaves the previous one in effect.
func (s *histogramSeries) configure(c Config) error {
	cfg := c.(HistogramConfig)
	bounds, err := cfg.Buckets.Resolve()
	if err != nil {
		return err
	}
	if err := s.agg.Reconfigure(bounds); err != nil {
		return err
	}
	s.agg.SetWindow(cfg.WindowSize)
	s.cfg = cfg
	return nil
}

// Histogram windows are configured per plot and ignore the global window.
func (s *histogramSeries) setWindow(int) {}
