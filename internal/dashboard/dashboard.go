// Package dashboard manages a window of plots.
//
// A Dashboard owns an ordered list of plots, a pause switch and an optional
// global window size that overrides the window of every counter and gauge
// plot. Configurations of removed plots are cached per metric so a metric
// plotted again comes back as it was configured.
package dashboard

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/metricscope/internal/events"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/logfields"
	"git.home.luguber.info/inful/metricscope/internal/plot"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/selfmetrics"
)

// Config holds the dashboard-wide settings.
type Config struct {
	// GlobalWindowSize, when set, is applied to every counter and gauge plot.
	GlobalWindowSize *int
	Paused           bool
}

// ConfigCache remembers plot configurations by metric. It may be shared by
// several dashboards.
type ConfigCache struct {
	mu      sync.RWMutex
	configs map[registry.MetricKey]plot.Config
}

// NewConfigCache creates an empty cache.
func NewConfigCache() *ConfigCache {
	return &ConfigCache{configs: make(map[registry.MetricKey]plot.Config)}
}

// Get returns the cached configuration of key.
func (c *ConfigCache) Get(key registry.MetricKey) (plot.Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.configs[key]
	return cfg, ok
}

// Put caches cfg for key, replacing any previous entry.
func (c *ConfigCache) Put(key registry.MetricKey, cfg plot.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[key] = cfg
}

// Len returns the number of cached configurations.
func (c *ConfigCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.configs)
}

// Dashboard is a titled list of plots over one registry.
type Dashboard struct {
	title    string
	id       string
	reg      *registry.Registry
	cache    *ConfigCache
	recorder selfmetrics.Recorder
	defaults func(registry.Kind) plot.Config

	mu     sync.RWMutex
	plots  []*plot.Plot
	config Config
}

// Option customizes a Dashboard.
type Option func(*Dashboard)

// WithConfigCache shares cache between dashboards.
func WithConfigCache(cache *ConfigCache) Option {
	return func(d *Dashboard) {
		if cache != nil {
			d.cache = cache
		}
	}
}

// WithRecorder reports rejected plot reconfigurations to r.
func WithRecorder(r selfmetrics.Recorder) Option {
	return func(d *Dashboard) { d.recorder = selfmetrics.OrNoop(r) }
}

// WithConfig sets the initial dashboard settings.
func WithConfig(cfg Config) Option {
	return func(d *Dashboard) { d.config = cfg }
}

// WithPlotDefaults sets the configuration of new plots whose metric has no
// cached configuration. The default is plot.DefaultConfig.
func WithPlotDefaults(fn func(registry.Kind) plot.Config) Option {
	return func(d *Dashboard) {
		if fn != nil {
			d.defaults = fn
		}
	}
}

// New creates an empty dashboard over reg.
func New(title string, reg *registry.Registry, opts ...Option) (*Dashboard, error) {
	if reg == nil {
		return nil, ferrors.ValidationError("registry is required").Build()
	}
	d := &Dashboard{
		title:    title,
		id:       uuid.NewString(),
		reg:      reg,
		cache:    NewConfigCache(),
		recorder: selfmetrics.NoopRecorder{},
		defaults: plot.DefaultConfig,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Title returns the dashboard title.
func (d *Dashboard) Title() string { return d.title }

// ID uniquely identifies the dashboard.
func (d *Dashboard) ID() string { return d.id }

// Config returns the dashboard settings.
func (d *Dashboard) Config() Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cfg := d.config
	if cfg.GlobalWindowSize != nil {
		size := *cfg.GlobalWindowSize
		cfg.GlobalWindowSize = &size
	}
	return cfg
}

// SetPaused stops or resumes plot updates.
func (d *Dashboard) SetPaused(paused bool) {
	d.mu.Lock()
	d.config.Paused = paused
	d.mu.Unlock()
}

// SetGlobalWindowSize locks every counter and gauge plot to size, clamped to
// the allowed range. Zero or a negative size unlocks the plots, which keep
// their current window.
func (d *Dashboard) SetGlobalWindowSize(size int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if size <= 0 {
		d.config.GlobalWindowSize = nil
		return
	}
	size = plot.ClampWindowSize(size)
	d.config.GlobalWindowSize = &size
	for _, p := range d.plots {
		p.ApplyGlobalWindow(size)
	}
}

// Plots returns the current plots in display order.
func (d *Dashboard) Plots() []*plot.Plot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*plot.Plot(nil), d.plots...)
}

// AddPlot appends a plot of key. Repeated plots of the same metric get a
// numbered title. The cached configuration of key is reused when present.
func (d *Dashboard) AddPlot(key registry.MetricKey, unit registry.Unit) (*plot.Plot, error) {
	cfg, ok := d.cache.Get(key)
	if !ok {
		cfg = d.defaults(key.Kind)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	duplicates := 0
	for _, p := range d.plots {
		if p.Key() == key {
			duplicates++
		}
	}
	p, err := plot.New(d.reg, key.Title(duplicates), key, unit, cfg)
	if err != nil {
		return nil, err
	}
	if d.config.GlobalWindowSize != nil {
		p.ApplyGlobalWindow(*d.config.GlobalWindowSize)
	}
	d.plots = append(d.plots, p)
	slog.Debug("Plot added", logfields.Widget(d.title), logfields.Metric(key.Name()), logfields.Kind(key.Kind.String()))
	return p, nil
}

// RemovePlot removes the i-th plot and caches its configuration.
func (d *Dashboard) RemovePlot(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.plots) {
		return ferrors.NewError(ferrors.CategoryNotFound, "no plot at index").
			WithContext("index", i).
			WithContext("plots", len(d.plots)).
			Build()
	}
	p := d.plots[i]
	d.plots = append(d.plots[:i], d.plots[i+1:]...)
	d.cache.Put(p.Key(), p.Config())
	return nil
}

// ConfigurePlot reconfigures the i-th plot. A rejected configuration is
// logged and returned; the plot keeps its previous configuration.
func (d *Dashboard) ConfigurePlot(i int, cfg plot.Config) error {
	d.mu.RLock()
	if i < 0 || i >= len(d.plots) {
		d.mu.RUnlock()
		return ferrors.NewError(ferrors.CategoryNotFound, "no plot at index").WithContext("index", i).Build()
	}
	p := d.plots[i]
	global := d.config.GlobalWindowSize
	d.mu.RUnlock()

	if err := p.Configure(cfg); err != nil {
		d.recorder.IncRejectedReconfigure(p.Kind().String())
		slog.Warn("Plot reconfiguration rejected",
			logfields.Widget(d.title),
			logfields.Metric(p.Key().Name()),
			logfields.Error(err))
		return err
	}
	if global != nil {
		p.ApplyGlobalWindow(*global)
	}
	return nil
}

// UpdatePlots pulls the latest state into every plot unless the dashboard
// is paused. It is the dashboard's consume step of an aggregation cycle.
func (d *Dashboard) UpdatePlots() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.config.Paused {
		return
	}
	for _, p := range d.plots {
		p.Update()
	}
}

// Consume implements cycle.Consumer.
func (d *Dashboard) Consume() { d.UpdatePlots() }

// Subscribe adds a plot for every PlotRequested event on bus. The
// subscription is registered before Subscribe returns; requests are handled on
// a background goroutine until stop is called or the bus is closed. stop
// waits for the goroutine to exit.
func (d *Dashboard) Subscribe(bus *events.Bus) (stop func(), err error) {
	if bus == nil {
		return nil, ferrors.ValidationError("bus is required").Build()
	}
	ch, unsubscribe := events.Subscribe[events.PlotRequested](bus, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for req := range ch {
			if _, err := d.AddPlot(req.Key, req.Unit); err != nil {
				slog.Warn("Plot request failed",
					logfields.Widget(d.title),
					logfields.Metric(req.Key.Name()),
					logfields.Error(err))
			}
		}
	}()
	return func() {
		unsubscribe()
		<-done
	}, nil
}
