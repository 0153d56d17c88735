// Package cycle drives the two-phase aggregation cycle.
//
// Every cycle first lets each consumer pull the current metric values and
// drain raw histogram samples (phase A), then clears the histogram sample
// logs exactly once (phase B). Phase B never starts before phase A has
// finished for every consumer of the cycle. A consumer added while a cycle
// is running joins from the next cycle on.
package cycle

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/logfields"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/selfmetrics"
)

// DefaultInterval is the time between cycles of Run.
const DefaultInterval = 16 * time.Millisecond

// Consumer pulls metric state during phase A.
type Consumer interface {
	Consume()
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func()

// Consume implements Consumer.
func (f ConsumerFunc) Consume() { f() }

// Stats describes one completed cycle.
type Stats struct {
	Cycle     uint64
	Start     time.Time
	Duration  time.Duration
	Consumers int
}

// Options configures a Driver. Zero values select defaults.
type Options struct {
	Interval time.Duration
	// Parallelism is the number of consumers run concurrently in phase A.
	// Values below 2 run them sequentially in registration order.
	Parallelism int
	Recorder    selfmetrics.Recorder
}

type registration struct {
	id       uint64
	consumer Consumer
}

// Driver runs aggregation cycles over a registry.
type Driver struct {
	reg         *registry.Registry
	interval    time.Duration
	parallelism int
	recorder    selfmetrics.Recorder

	mu        sync.Mutex
	consumers []registration
	nextID    uint64
	hooks     []func(Stats)

	// stepMu serializes cycles.
	stepMu sync.Mutex
	cycles uint64
}

// NewDriver creates a driver over reg.
func NewDriver(reg *registry.Registry, opts Options) (*Driver, error) {
	if reg == nil {
		return nil, ferrors.ValidationError("registry is required").Build()
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	return &Driver{
		reg:         reg,
		interval:    opts.Interval,
		parallelism: opts.Parallelism,
		recorder:    selfmetrics.OrNoop(opts.Recorder),
	}, nil
}

// AddConsumer registers c for phase A of every following cycle and returns
// a function that unregisters it.
func (d *Driver) AddConsumer(c Consumer) (remove func()) {
	if c == nil {
		return func() {}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.consumers = append(d.consumers, registration{id: id, consumer: c})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.consumers = slices.DeleteFunc(d.consumers, func(r registration) bool { return r.id == id })
	}
}

// OnEndOfCycle registers fn to run after phase B of every cycle.
func (d *Driver) OnEndOfCycle(fn func(Stats)) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	d.hooks = append(d.hooks, fn)
	d.mu.Unlock()
}

// Cycles returns the number of completed cycles.
func (d *Driver) Cycles() uint64 {
	d.stepMu.Lock()
	defer d.stepMu.Unlock()
	return d.cycles
}

// Step runs one cycle: phase A over every consumer, phase B, then the
// end-of-cycle hooks.
func (d *Driver) Step() Stats {
	d.stepMu.Lock()
	defer d.stepMu.Unlock()

	d.mu.Lock()
	consumers := make([]Consumer, len(d.consumers))
	for i, r := range d.consumers {
		consumers[i] = r.consumer
	}
	hooks := slices.Clone(d.hooks)
	d.mu.Unlock()

	start := time.Now()
	d.consume(consumers)
	d.reg.ClearHistogramSamples()

	d.cycles++
	stats := Stats{
		Cycle:     d.cycles,
		Start:     start,
		Duration:  time.Since(start),
		Consumers: len(consumers),
	}
	d.recorder.ObserveCycle(stats.Duration)
	d.recorder.SetRegisteredMetrics(d.reg.Len())
	for _, fn := range hooks {
		fn(stats)
	}
	return stats
}

func (d *Driver) consume(consumers []Consumer) {
	if d.parallelism < 2 || len(consumers) < 2 {
		for _, c := range consumers {
			c.Consume()
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(d.parallelism)
	for _, c := range consumers {
		g.Go(func() error {
			c.Consume()
			return nil
		})
	}
	_ = g.Wait()
}

// Run steps a cycle every interval until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	slog.Info("Aggregation cycle started", slog.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Aggregation cycle stopped", logfields.Cycle(d.Cycles()))
			return nil
		case <-ticker.C:
			stats := d.Step()
			if stats.Duration > d.interval {
				slog.Debug("Cycle overran its interval",
					logfields.Cycle(stats.Cycle),
					logfields.DurationMS(float64(stats.Duration.Microseconds())/1000))
			}
		}
	}
}
