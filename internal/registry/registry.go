package registry

import (
	"slices"
	"sync"
)

// Description is the documentation registered for a metric family.
type Description struct {
	Unit Unit
	Text string
}

type descriptionKey struct {
	name string
	kind Kind
}

// Entry is one registered metric in a ListAll snapshot.
type Entry struct {
	Key         MetricKey
	Description *Description
}

// Name returns the metric name of the entry.
func (e Entry) Name() string { return e.Key.Key.Name() }

// Registry maps metric identities to storage cells. The zero value is not
// usable; construct with New. A Registry is safe for concurrent use and is
// meant to be shared by pointer between producers and consumers.
type Registry struct {
	counters   store[CounterCell]
	gauges     store[GaugeCell]
	histograms store[HistogramCell]

	descMu       sync.RWMutex
	descriptions map[descriptionKey]Description
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		counters:     newStore[CounterCell](),
		gauges:       newStore[GaugeCell](),
		histograms:   newStore[HistogramCell](),
		descriptions: make(map[descriptionKey]Description),
	}
}

// store is a get-or-create map of cells for one metric kind. Reads take the
// shared lock; creation re-checks under the exclusive lock so concurrent
// callers for the same key always receive the same cell.
type store[C any] struct {
	mu    *sync.RWMutex
	cells map[Key]*C
}

func newStore[C any]() store[C] {
	return store[C]{mu: &sync.RWMutex{}, cells: make(map[Key]*C)}
}

func (s store[C]) getOrCreate(k Key) *C {
	s.mu.RLock()
	c, ok := s.cells[k]
	s.mu.RUnlock()
	if ok {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cells[k]; ok {
		return c
	}
	c = new(C)
	s.cells[k] = c
	return c
}

func (s store[C]) get(k Key) (*C, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cells[k]
	return c, ok
}

// snapshot copies the key/cell pairs so callers never hold the lock while
// running their own code.
func (s store[C]) snapshot() ([]Key, []*C) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]Key, 0, len(s.cells))
	cells := make([]*C, 0, len(s.cells))
	for k, c := range s.cells {
		keys = append(keys, k)
		cells = append(cells, c)
	}
	return keys, cells
}

func (s store[C]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// GetOrCreateCounter returns the counter cell for key, creating it if absent.
func (r *Registry) GetOrCreateCounter(key Key) *CounterCell {
	return r.counters.getOrCreate(key)
}

// GetOrCreateGauge returns the gauge cell for key, creating it if absent.
func (r *Registry) GetOrCreateGauge(key Key) *GaugeCell {
	return r.gauges.getOrCreate(key)
}

// GetOrCreateHistogram returns the histogram cell for key, creating it if absent.
func (r *Registry) GetOrCreateHistogram(key Key) *HistogramCell {
	return r.histograms.getOrCreate(key)
}

// Counter returns the counter cell for key if registered.
func (r *Registry) Counter(key Key) (*CounterCell, bool) { return r.counters.get(key) }

// Gauge returns the gauge cell for key if registered.
func (r *Registry) Gauge(key Key) (*GaugeCell, bool) { return r.gauges.get(key) }

// Histogram returns the histogram cell for key if registered.
func (r *Registry) Histogram(key Key) (*HistogramCell, bool) { return r.histograms.get(key) }

// Describe registers a description for (name, kind) unless one already exists.
// Later descriptions for the same family are dropped.
func (r *Registry) Describe(name string, kind Kind, unit Unit, text string) {
	dk := descriptionKey{name: name, kind: kind}

	r.descMu.RLock()
	_, exists := r.descriptions[dk]
	r.descMu.RUnlock()
	if exists {
		return
	}

	r.descMu.Lock()
	defer r.descMu.Unlock()
	if _, exists := r.descriptions[dk]; !exists {
		r.descriptions[dk] = Description{Unit: unit, Text: text}
	}
}

// Description returns the description registered for (name, kind).
func (r *Registry) Description(name string, kind Kind) (Description, bool) {
	r.descMu.RLock()
	defer r.descMu.RUnlock()
	d, ok := r.descriptions[descriptionKey{name: name, kind: kind}]
	return d, ok
}

// ListAll returns every registered metric with its description, sorted by
// name, labels and kind. Metrics registered concurrently may be missing.
func (r *Registry) ListAll() []Entry {
	entries := make([]Entry, 0, r.Len())
	appendKind := func(keys []Key, kind Kind) {
		for _, k := range keys {
			entries = append(entries, Entry{Key: MetricKey{Key: k, Kind: kind}})
		}
	}
	counterKeys, _ := r.counters.snapshot()
	gaugeKeys, _ := r.gauges.snapshot()
	histogramKeys, _ := r.histograms.snapshot()
	appendKind(counterKeys, KindCounter)
	appendKind(gaugeKeys, KindGauge)
	appendKind(histogramKeys, KindHistogram)

	r.descMu.RLock()
	for i := range entries {
		mk := entries[i].Key
		if d, ok := r.descriptions[descriptionKey{name: mk.Name(), kind: mk.Kind}]; ok {
			entries[i].Description = &d
		}
	}
	r.descMu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int { return a.Key.Compare(b.Key) })
	return entries
}

// VisitCounters calls fn for every registered counter.
func (r *Registry) VisitCounters(fn func(Key, *CounterCell)) {
	visit(r.counters, fn)
}

// VisitGauges calls fn for every registered gauge.
func (r *Registry) VisitGauges(fn func(Key, *GaugeCell)) {
	visit(r.gauges, fn)
}

// VisitHistograms calls fn for every registered histogram.
func (r *Registry) VisitHistograms(fn func(Key, *HistogramCell)) {
	visit(r.histograms, fn)
}

func visit[C any](s store[C], fn func(Key, *C)) {
	keys, cells := s.snapshot()
	for i, k := range keys {
		fn(k, cells[i])
	}
}

// ClearHistogramSamples discards the raw samples of every histogram. The
// cycle driver calls it exactly once per cycle, after every consumer has
// drained its histograms.
func (r *Registry) ClearHistogramSamples() {
	r.VisitHistograms(func(_ Key, h *HistogramCell) { h.Clear() })
}

// Len returns the number of registered metrics across all kinds.
func (r *Registry) Len() int {
	return r.counters.len() + r.gauges.len() + r.histograms.len()
}
