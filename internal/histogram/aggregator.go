// Package histogram turns raw histogram samples into bucket counts.
//
// An Aggregator runs in one of two modes. Cumulative mode folds every drained
// sample into running totals. Windowed mode keeps the most recent samples in
// a ring buffer and recomputes every count from the ring on each update, which
// stays correct for any drain batch size.
package histogram

import (
	"slices"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/ring"
)

// Aggregator maintains bucket counts for one histogram. It is not safe for
// concurrent use; the owning plot serializes access.
type Aggregator struct {
	bounds []float64
	counts []uint64
	// window is nil in cumulative mode.
	window *ring.Ring[float64]
	// scratch collects newest-first samples during a windowed drain.
	scratch []float64
}

// New creates an aggregator over bounds. windowSize 0 selects cumulative
// mode; any positive size keeps a sliding window of that many samples.
func New(bounds []float64, windowSize int) (*Aggregator, error) {
	a := &Aggregator{}
	if err := a.Reconfigure(bounds); err != nil {
		return nil, err
	}
	a.SetWindow(windowSize)
	return a, nil
}

// NewFromRange creates an aggregator with uniform buckets.
func NewFromRange(r BucketRange, windowSize int) (*Aggregator, error) {
	bounds, err := r.Bounds()
	if err != nil {
		return nil, err
	}
	return New(bounds, windowSize)
}

// Reconfigure replaces the boundaries and zeroes every count. Invalid
// boundaries are rejected and the previous configuration stays in effect.
func (a *Aggregator) Reconfigure(bounds []float64) error {
	normalized, err := NormalizeBounds(bounds)
	if err != nil {
		return err
	}
	a.bounds = normalized
	a.counts = slices.Grow(a.counts[:0], len(normalized)+1)[:len(normalized)+1]
	clear(a.counts)
	return nil
}

// ReconfigureRange is Reconfigure with uniform boundaries from r.
func (a *Aggregator) ReconfigureRange(r BucketRange) error {
	bounds, err := r.Bounds()
	if err != nil {
		return err
	}
	return a.Reconfigure(bounds)
}

// SetWindow switches modes or resizes the window. Size 0 switches to
// cumulative mode and zeroes the counts. A positive size keeps the newest
// samples already in the window.
func (a *Aggregator) SetWindow(size int) {
	switch {
	case size <= 0:
		if a.window != nil {
			a.window = nil
			clear(a.counts)
		}
	case a.window == nil:
		a.window = ring.New[float64](size)
		clear(a.counts)
	default:
		a.window.SetCapacity(size)
	}
}

// WindowSize returns the sliding window size, or 0 in cumulative mode.
func (a *Aggregator) WindowSize() int {
	if a.window == nil {
		return 0
	}
	return a.window.Cap()
}

// Windowed reports whether the aggregator uses a sliding window.
func (a *Aggregator) Windowed() bool { return a.window != nil }

// Ingest adds samples given in recording order. In windowed mode the
// samples enter the window and the counts are recomputed from it.
func (a *Aggregator) Ingest(samples []float64) {
	if a.window == nil {
		for _, v := range samples {
			a.counts[BucketIndex(a.bounds, v)]++
		}
		return
	}
	for _, v := range samples[max(0, len(samples)-a.window.Cap()):] {
		a.window.Push(v)
	}
	a.recount()
}

// Update drains the raw samples of cell. Cumulative mode folds every sample
// into the totals. Windowed mode takes at most the window size of the newest
// samples, discarding older ones, and recomputes the counts from the window.
func (a *Aggregator) Update(cell *registry.HistogramCell) {
	if a.window == nil {
		cell.Data(func(samples []float64) {
			for _, v := range samples {
				a.counts[BucketIndex(a.bounds, v)]++
			}
		})
		return
	}

	limit := a.window.Cap()
	a.scratch = a.scratch[:0]
	cell.Recent(func(v float64) bool {
		a.scratch = append(a.scratch, v)
		return len(a.scratch) < limit
	})
	for i := len(a.scratch) - 1; i >= 0; i-- {
		a.window.Push(a.scratch[i])
	}
	a.recount()
}

func (a *Aggregator) recount() {
	clear(a.counts)
	for v := range a.window.All() {
		a.counts[BucketIndex(a.bounds, v)]++
	}
}

// Reset zeroes the counts and empties the window.
func (a *Aggregator) Reset() {
	clear(a.counts)
	if a.window != nil {
		a.window.Reset()
	}
}

// Bounds returns a copy of the boundaries.
func (a *Aggregator) Bounds() []float64 { return slices.Clone(a.bounds) }

// Counts returns a copy of the bucket counts; its length is len(Bounds())+1.
func (a *Aggregator) Counts() []uint64 {
	ferrors.MustInvariant(len(a.counts) == len(a.bounds)+1,
		"bucket counts %d do not match %d boundaries", len(a.counts), len(a.bounds))
	return slices.Clone(a.counts)
}

// Total returns the sum of all bucket counts.
func (a *Aggregator) Total() uint64 {
	var total uint64
	for _, c := range a.counts {
		total += c
	}
	return total
}

// Bars lays the counts out for a bar chart.
func (a *Aggregator) Bars() []Bar { return makeBars(a.bounds, a.counts) }

// WindowValues returns the samples currently in the window, oldest first.
func (a *Aggregator) WindowValues() []float64 {
	if a.window == nil {
		return nil
	}
	return a.window.Values()
}
