package config

import (
	"strings"

	"git.home.luguber.info/inful/metricscope/internal/cycle"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/histogram"
	"git.home.luguber.info/inful/metricscope/internal/namespace"
	"git.home.luguber.info/inful/metricscope/internal/plot"
	"git.home.luguber.info/inful/metricscope/internal/search"
)

// Normalize applies defaults to unset fields and clamps window sizes and the
// smoothing weight into their allowed ranges. Values Normalize cannot repair
// are left for Validate.
func Normalize(cfg *Config) {
	if cfg.Cycle.Interval == 0 {
		cfg.Cycle.Interval = cycle.DefaultInterval
	}

	if cfg.Plots.WindowSize == 0 {
		cfg.Plots.WindowSize = plot.DefaultWindowSize
	}
	cfg.Plots.WindowSize = plot.ClampWindowSize(cfg.Plots.WindowSize)
	if cfg.Plots.SmoothingWeight == nil {
		w := plot.DefaultSmoothingWeight
		cfg.Plots.SmoothingWeight = &w
	} else {
		w := min(max(*cfg.Plots.SmoothingWeight, 0), 1)
		cfg.Plots.SmoothingWeight = &w
	}

	if cfg.Histogram.WindowSize == nil {
		w := plot.DefaultWindowSize
		cfg.Histogram.WindowSize = &w
	} else if *cfg.Histogram.WindowSize > 0 {
		w := plot.ClampWindowSize(*cfg.Histogram.WindowSize)
		cfg.Histogram.WindowSize = &w
	}
	if len(cfg.Histogram.Bounds) == 0 && cfg.Histogram.Range == nil {
		r := histogram.DefaultBucketRange()
		cfg.Histogram.Range = &r
	}

	if cfg.Search.Debounce == 0 {
		cfg.Search.Debounce = search.DefaultDebounce
	}

	if cfg.Namespace.RefreshPeriod == 0 {
		cfg.Namespace.RefreshPeriod = namespace.DefaultRefreshPeriod
	}
	if cfg.Namespace.Delimiter == "" {
		cfg.Namespace.Delimiter = namespace.DefaultDelimiter
	}
}

// Validate reports the first invalid setting as a validation error.
func Validate(cfg *Config) error {
	if cfg.Cycle.Interval <= 0 {
		return invalid("cycle.interval must be positive", cfg.Cycle.Interval.String())
	}
	if cfg.Cycle.Parallelism < 0 {
		return invalid("cycle.parallelism must not be negative", cfg.Cycle.Parallelism)
	}
	if cfg.Search.Debounce < 0 {
		return invalid("search.debounce must not be negative", cfg.Search.Debounce.String())
	}
	if cfg.Namespace.RefreshPeriod <= 0 {
		return invalid("namespace.refresh_period must be positive", cfg.Namespace.RefreshPeriod.String())
	}
	if strings.TrimSpace(cfg.Namespace.Delimiter) == "" {
		return invalid("namespace.delimiter must not be blank", cfg.Namespace.Delimiter)
	}
	if cfg.Histogram.WindowSize != nil && *cfg.Histogram.WindowSize < 0 {
		return invalid("histogram.window_size must not be negative", *cfg.Histogram.WindowSize)
	}
	if _, err := cfg.Histogram.Resolve(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid histogram buckets").Build()
	}
	if g := cfg.Dashboard.GlobalWindowSize; g != nil && *g <= 0 {
		return invalid("dashboard.global_window_size must be positive", *g)
	}
	return nil
}

func invalid(msg string, value any) error {
	return ferrors.ValidationError(msg).WithContext("value", value).Build()
}
