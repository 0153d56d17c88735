// Package config loads the metricscope configuration file.
//
// The file is YAML. A .env file in the working directory is loaded first and
// ${VAR} references in the YAML are expanded from the environment before
// decoding. Missing fields take their defaults in Normalize.
package config

import (
	"time"

	"git.home.luguber.info/inful/metricscope/internal/cycle"
	"git.home.luguber.info/inful/metricscope/internal/dashboard"
	"git.home.luguber.info/inful/metricscope/internal/histogram"
	"git.home.luguber.info/inful/metricscope/internal/namespace"
	"git.home.luguber.info/inful/metricscope/internal/plot"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/search"
)

// Config represents the application configuration.
type Config struct {
	Cycle     CycleConfig     `yaml:"cycle"`
	Plots     PlotsConfig     `yaml:"plots"`
	Histogram HistogramConfig `yaml:"histogram"`
	Search    SearchConfig    `yaml:"search"`
	Namespace NamespaceConfig `yaml:"namespace"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// CycleConfig controls the aggregation cycle driver.
type CycleConfig struct {
	Interval time.Duration `yaml:"interval"`
	// Parallelism > 1 runs consumers concurrently within a cycle.
	Parallelism int `yaml:"parallelism,omitempty"`
}

// PlotsConfig holds the defaults of new counter and gauge plots.
type PlotsConfig struct {
	WindowSize int `yaml:"window_size"`
	// SmoothingWeight is a pointer so an explicit 0 (no smoothing) is kept.
	SmoothingWeight *float64 `yaml:"smoothing_weight,omitempty"`
	Derivative      bool     `yaml:"derivative"`
}

// HistogramConfig holds the defaults of new histogram plots.
type HistogramConfig struct {
	// WindowSize 0 accumulates every sample. Unset means the default window.
	WindowSize             *int `yaml:"window_size,omitempty"`
	histogram.BucketConfig `yaml:",inline"`
}

// SearchConfig controls the search bar.
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// NamespaceConfig controls the namespace tree view.
type NamespaceConfig struct {
	RefreshPeriod time.Duration `yaml:"refresh_period"`
	Delimiter     string        `yaml:"delimiter"`
}

// DashboardConfig holds the initial dashboard settings.
type DashboardConfig struct {
	GlobalWindowSize *int `yaml:"global_window_size,omitempty"`
	Paused           bool `yaml:"paused"`
}

// Default returns a normalized configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

// PlotDefaults returns the configuration new plots of kind start with.
func (c *Config) PlotDefaults(kind registry.Kind) plot.Config {
	switch kind {
	case registry.KindGauge:
		weight := plot.DefaultSmoothingWeight
		if c.Plots.SmoothingWeight != nil {
			weight = *c.Plots.SmoothingWeight
		}
		return plot.GaugeConfig{
			SmoothingWeight: weight,
			WindowSize:      c.Plots.WindowSize,
			Derivative:      c.Plots.Derivative,
		}
	case registry.KindHistogram:
		window := plot.DefaultWindowSize
		if c.Histogram.WindowSize != nil {
			window = *c.Histogram.WindowSize
		}
		buckets := c.Histogram.BucketConfig
		if len(buckets.Bounds) > 0 {
			buckets.Bounds = append([]float64(nil), buckets.Bounds...)
		}
		if buckets.Range != nil {
			r := *buckets.Range
			buckets.Range = &r
		}
		return plot.HistogramConfig{WindowSize: window, Buckets: buckets}
	default:
		return plot.CounterConfig{
			WindowSize: c.Plots.WindowSize,
			Derivative: c.Plots.Derivative,
		}
	}
}

// DashboardOptions returns the options that apply this configuration to a
// new dashboard.
func (c *Config) DashboardOptions() []dashboard.Option {
	dc := dashboard.Config{Paused: c.Dashboard.Paused}
	if c.Dashboard.GlobalWindowSize != nil {
		size := plot.ClampWindowSize(*c.Dashboard.GlobalWindowSize)
		dc.GlobalWindowSize = &size
	}
	return []dashboard.Option{
		dashboard.WithConfig(dc),
		dashboard.WithPlotDefaults(c.PlotDefaults),
	}
}

// DriverOptions returns the cycle driver settings.
func (c *Config) DriverOptions() cycle.Options {
	return cycle.Options{Interval: c.Cycle.Interval, Parallelism: c.Cycle.Parallelism}
}

// ViewOptions returns the namespace tree view settings.
func (c *Config) ViewOptions() namespace.ViewOptions {
	return namespace.ViewOptions{
		Delimiter:     c.Namespace.Delimiter,
		RefreshPeriod: c.Namespace.RefreshPeriod,
	}
}

// BarOptions returns the search bar settings.
func (c *Config) BarOptions() search.BarOptions {
	return search.BarOptions{Debounce: c.Search.Debounce}
}
