package search

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/metricscope/internal/events"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/logfields"
	"git.home.luguber.info/inful/metricscope/internal/task"
)

// DefaultDebounce is the quiet period after the last input change before a
// search starts.
const DefaultDebounce = 250 * time.Millisecond

// BarOptions configures a Bar. Zero values select defaults.
type BarOptions struct {
	Debounce time.Duration
	// Bus receives a PlotRequested event when a result is selected.
	Bus *events.Bus
	// Name identifies the bar in logs and plot requests.
	Name string
}

type searchOutcome struct {
	generation uint64
	results    []Result
}

// Bar is the state of a search widget. Input changes are debounced; once the
// input has been stable for the quiet period a search runs on the task pool.
// At most one search is in flight: input arriving meanwhile waits for it to
// finish. Results of a search whose input was superseded are discarded.
//
// Bar is safe for concurrent use, but it is meant to be driven from a single
// render loop calling SetInput and Poll.
type Bar struct {
	index    *Index
	pool     *task.Pool
	debounce time.Duration
	bus      *events.Bus
	name     string

	mu         sync.Mutex
	input      string
	dirty      bool
	lastChange time.Time
	generation uint64
	pending    *task.Handle[searchOutcome]
	results    []Result
}

// NewBar creates a search bar. The first Poll searches the empty query,
// listing every metric.
func NewBar(index *Index, pool *task.Pool, opts BarOptions) (*Bar, error) {
	if index == nil {
		return nil, ferrors.ValidationError("search index is required").Build()
	}
	if pool == nil {
		return nil, ferrors.ValidationError("task pool is required").Build()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Name == "" {
		opts.Name = "search"
	}
	return &Bar{
		index:    index,
		pool:     pool,
		debounce: opts.Debounce,
		bus:      opts.Bus,
		name:     opts.Name,
		dirty:    true,
	}, nil
}

// Input returns the current query text.
func (b *Bar) Input() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.input
}

// SetInput records a change of the query text at now.
func (b *Bar) SetInput(query string, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if query == b.input {
		return
	}
	b.input = query
	b.dirty = true
	b.lastChange = now
	b.generation++
}

// Searching reports whether a search is in flight.
func (b *Bar) Searching() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending != nil
}

// Results returns the latest results, sorted by name.
func (b *Bar) Results() []Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results
}

// Poll collects a finished search and starts the next one when the input is
// dirty, stable for the debounce period, and no search is in flight. It never
// blocks and reports whether the results changed.
func (b *Bar) Poll(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	updated := false
	if b.pending != nil {
		if out, ok := b.pending.Poll(); ok {
			b.pending = nil
			if out.generation == b.generation {
				SortByName(out.results)
				b.results = out.results
				updated = true
			} else {
				slog.Debug("Discarding superseded search results",
					logfields.Widget(b.name),
					logfields.Results(len(out.results)))
			}
		}
	}

	if b.dirty && b.pending == nil && now.Sub(b.lastChange) >= b.debounce {
		b.spawnLocked()
	}
	return updated
}

func (b *Bar) spawnLocked() {
	query, generation, index := b.input, b.generation, b.index
	h, err := task.Spawn(b.pool, func() searchOutcome {
		return searchOutcome{generation: generation, results: index.Search(query)}
	})
	if err != nil {
		slog.Warn("Search not started", logfields.Widget(b.name), logfields.Query(query), logfields.Error(err))
		return
	}
	b.pending = h
	b.dirty = false
}

// Select publishes a plot request for the i-th result and returns it.
func (b *Bar) Select(ctx context.Context, i int) (Result, error) {
	b.mu.Lock()
	if i < 0 || i >= len(b.results) {
		n := len(b.results)
		b.mu.Unlock()
		return Result{}, ferrors.NewError(ferrors.CategoryNotFound, "no search result at index").
			WithContext("index", i).
			WithContext("results", n).
			Build()
	}
	res := b.results[i]
	b.mu.Unlock()

	if b.bus != nil {
		req := events.PlotRequested{Key: res.Key, Unit: res.Unit(), Source: b.name}
		if err := b.bus.Publish(ctx, req); err != nil {
			return res, err
		}
	}
	return res, nil
}
