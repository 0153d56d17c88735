package plot

import (
	"git.home.luguber.info/inful/metricscope/internal/histogram"
	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// Window size limits for counter and gauge plots.
const (
	MinWindowSize     = 100
	MaxWindowSize     = 5000
	DefaultWindowSize = 500

	DefaultSmoothingWeight = 0.8
)

// ClampWindowSize limits n to [MinWindowSize, MaxWindowSize].
func ClampWindowSize(n int) int {
	return min(max(n, MinWindowSize), MaxWindowSize)
}

// Config is the configuration of one plot: a CounterConfig, GaugeConfig or
// HistogramConfig.
type Config interface {
	// Kind is the metric kind the config applies to.
	Kind() registry.Kind
	normalize() Config
}

// CounterConfig configures a counter plot.
type CounterConfig struct {
	WindowSize int  `yaml:"window_size"`
	Derivative bool `yaml:"derivative"`
}

func (CounterConfig) Kind() registry.Kind { return registry.KindCounter }

func (c CounterConfig) normalize() Config {
	c.WindowSize = ClampWindowSize(c.WindowSize)
	return c
}

// GaugeConfig configures a gauge plot. SmoothingWeight is the weight of the
// previous smoothed value, in [0, 1]; 0 disables smoothing.
type GaugeConfig struct {
	SmoothingWeight float64 `yaml:"smoothing_weight"`
	WindowSize      int     `yaml:"window_size"`
	Derivative      bool    `yaml:"derivative"`
}

func (GaugeConfig) Kind() registry.Kind { return registry.KindGauge }

func (c GaugeConfig) normalize() Config {
	c.WindowSize = ClampWindowSize(c.WindowSize)
	c.SmoothingWeight = clampWeight(c.SmoothingWeight)
	return c
}

// HistogramConfig configures a histogram plot. WindowSize 0 accumulates
// every sample; a positive size keeps a sliding window of samples.
type HistogramConfig struct {
	WindowSize int                    `yaml:"window_size"`
	Buckets    histogram.BucketConfig `yaml:"buckets"`
}

func (HistogramConfig) Kind() registry.Kind { return registry.KindHistogram }

func (c HistogramConfig) normalize() Config {
	if c.WindowSize > 0 {
		c.WindowSize = ClampWindowSize(c.WindowSize)
	}
	return c
}

// DefaultConfig returns the default configuration for kind.
func DefaultConfig(kind registry.Kind) Config {
	switch kind {
	case registry.KindGauge:
		return GaugeConfig{SmoothingWeight: DefaultSmoothingWeight, WindowSize: DefaultWindowSize}
	case registry.KindHistogram:
		return HistogramConfig{WindowSize: DefaultWindowSize, Buckets: histogram.DefaultBucketConfig()}
	default:
		return CounterConfig{WindowSize: DefaultWindowSize}
	}
}
