package registry

import (
	"math"
	"sync"
	"sync/atomic"
)

// CounterCell is the storage of a counter.
type CounterCell struct {
	v atomic.Uint64
}

// Increment adds n to the counter.
func (c *CounterCell) Increment(n uint64) { c.v.Add(n) }

// Absolute raises the counter to n if n is larger than the current value.
func (c *CounterCell) Absolute(n uint64) {
	for {
		cur := c.v.Load()
		if n <= cur || c.v.CompareAndSwap(cur, n) {
			return
		}
	}
}

// Value returns the current count.
func (c *CounterCell) Value() uint64 { return c.v.Load() }

// GaugeCell is the storage of a gauge: a float64 bit pattern in an atomic word.
type GaugeCell struct {
	bits atomic.Uint64
}

// Set replaces the gauge value.
func (g *GaugeCell) Set(v float64) { g.bits.Store(math.Float64bits(v)) }

// Increment adds delta to the gauge.
func (g *GaugeCell) Increment(delta float64) {
	for {
		cur := g.bits.Load()
		next := math.Float64bits(math.Float64frombits(cur) + delta)
		if g.bits.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Decrement subtracts delta from the gauge.
func (g *GaugeCell) Decrement(delta float64) { g.Increment(-delta) }

// Value returns the current gauge value.
func (g *GaugeCell) Value() float64 { return math.Float64frombits(g.bits.Load()) }

// blockSize is the number of samples held by one block of a histogram log.
const blockSize = 256

type sampleBlock struct {
	values [blockSize]float64
	n      int
}

var blockPool = sync.Pool{New: func() any { return new(sampleBlock) }}

// HistogramCell is the raw sample log of a histogram: an append-only list of
// fixed-size blocks. Recording only allocates when a new block is needed,
// and blocks released by Clear are recycled.
type HistogramCell struct {
	mu      sync.Mutex
	blocks  []*sampleBlock
	count   int
	discard bool
}

// Record appends one sample.
func (h *HistogramCell) Record(v float64) {
	if h.discard {
		return
	}
	h.mu.Lock()
	h.appendLocked(v)
	h.mu.Unlock()
}

// RecordMany appends several samples under one lock acquisition.
func (h *HistogramCell) RecordMany(vs ...float64) {
	if h.discard || len(vs) == 0 {
		return
	}
	h.mu.Lock()
	for _, v := range vs {
		h.appendLocked(v)
	}
	h.mu.Unlock()
}

func (h *HistogramCell) appendLocked(v float64) {
	n := len(h.blocks)
	if n == 0 || h.blocks[n-1].n == blockSize {
		h.blocks = append(h.blocks, blockPool.Get().(*sampleBlock))
		n++
	}
	b := h.blocks[n-1]
	b.values[b.n] = v
	b.n++
	h.count++
}

// Len returns the number of samples recorded since the last Clear.
func (h *HistogramCell) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Data calls fn with the recorded samples in recording order, one block at a
// time. The slices are only valid during fn. Producers block while Data runs.
func (h *HistogramCell) Data(fn func(samples []float64)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, b := range h.blocks {
		fn(b.values[:b.n])
	}
}

// Recent calls fn with samples from newest to oldest until fn returns false.
func (h *HistogramCell) Recent(fn func(v float64) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.blocks) - 1; i >= 0; i-- {
		b := h.blocks[i]
		for j := b.n - 1; j >= 0; j-- {
			if !fn(b.values[j]) {
				return
			}
		}
	}
}

// Clear swaps out and discards every recorded sample.
func (h *HistogramCell) Clear() {
	h.mu.Lock()
	blocks := h.blocks
	h.blocks = h.blocks[:0]
	h.count = 0
	for _, b := range blocks {
		b.n = 0
		blockPool.Put(b)
	}
	clear(blocks)
	h.mu.Unlock()
}
