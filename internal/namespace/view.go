package namespace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/metricscope/internal/events"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/logfields"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/selfmetrics"
	"git.home.luguber.info/inful/metricscope/internal/task"
)

// DefaultRefreshPeriod is the time between background tree rebuilds.
const DefaultRefreshPeriod = 5 * time.Second

// ViewOptions configures a TreeView. Zero values select defaults.
type ViewOptions struct {
	Delimiter     string
	RefreshPeriod time.Duration
	Recorder      selfmetrics.Recorder
	// Bus receives a PlotRequested event when a metric is selected.
	Bus *events.Bus
}

type refreshResult struct {
	roots    []Node
	dropped  int
	duration time.Duration
}

// TreeView keeps a namespace tree of a registry up to date. The tree is
// rebuilt on a task pool; Poll swaps in a finished rebuild without blocking
// and starts a new one when the refresh period has elapsed. At most one
// rebuild is in flight.
type TreeView struct {
	title    string
	id       string
	reg      *registry.Registry
	pool     *task.Pool
	delim    string
	period   time.Duration
	recorder selfmetrics.Recorder
	bus      *events.Bus

	mu          sync.Mutex
	roots       []Node
	pending     *task.Handle[refreshResult]
	due         bool
	lastRefresh time.Time

	scheduler gocron.Scheduler
}

// NewTreeView creates a view over reg. The first Poll starts a rebuild.
func NewTreeView(title string, reg *registry.Registry, pool *task.Pool, opts ViewOptions) (*TreeView, error) {
	if reg == nil {
		return nil, ferrors.ValidationError("registry is required").Build()
	}
	if pool == nil {
		return nil, ferrors.ValidationError("task pool is required").Build()
	}
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}
	if opts.RefreshPeriod <= 0 {
		opts.RefreshPeriod = DefaultRefreshPeriod
	}
	return &TreeView{
		title:    title,
		id:       uuid.NewString(),
		reg:      reg,
		pool:     pool,
		delim:    opts.Delimiter,
		period:   opts.RefreshPeriod,
		recorder: selfmetrics.OrNoop(opts.Recorder),
		bus:      opts.Bus,
		due:      true,
	}, nil
}

// Title returns the view's title.
func (v *TreeView) Title() string { return v.title }

// ID uniquely identifies the view.
func (v *TreeView) ID() string { return v.id }

// SetRefreshPeriod changes the time between rebuilds. It takes effect for
// Poll immediately and for a running scheduler after StartScheduler is called
// again.
func (v *TreeView) SetRefreshPeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	v.mu.Lock()
	v.period = d
	v.mu.Unlock()
}

// Refresh requests a rebuild on the next Poll.
func (v *TreeView) Refresh() {
	v.mu.Lock()
	v.due = true
	v.mu.Unlock()
}

// Roots returns the most recently built tree.
func (v *TreeView) Roots() []Node {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.roots
}

// Poll swaps in a finished rebuild and starts a new one when due. It never
// blocks on a rebuild and reports whether the tree changed.
func (v *TreeView) Poll(now time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	changed := false
	if v.pending != nil {
		if res, ok := v.pending.Poll(); ok {
			v.pending = nil
			v.roots = res.roots
			changed = true
			v.recorder.ObserveTreeRefresh(res.duration, Count(res.roots))
			v.recorder.AddDroppedPaths(res.dropped)
		}
	}

	stale := v.scheduler == nil && now.Sub(v.lastRefresh) >= v.period
	if v.pending == nil && (v.due || stale) {
		v.spawnLocked(now)
	}
	return changed
}

func (v *TreeView) spawnLocked(now time.Time) {
	reg, delim := v.reg, v.delim
	h, err := task.Spawn(v.pool, func() refreshResult {
		start := time.Now()
		entries := reg.ListAll()
		roots := Build(entries, delim)
		return refreshResult{
			roots:    roots,
			dropped:  len(entries) - Count(roots),
			duration: time.Since(start),
		}
	})
	if err != nil {
		slog.Warn("Namespace tree refresh not started", logfields.Widget(v.title), logfields.Error(err))
		return
	}
	v.pending = h
	v.due = false
	v.lastRefresh = now
}

// StartScheduler marks the view due every refresh period from a gocron job
// instead of comparing timestamps in Poll.
func (v *TreeView) StartScheduler() error {
	if err := v.StopScheduler(); err != nil {
		slog.Warn("Failed to stop previous tree scheduler", logfields.Widget(v.title), logfields.Error(err))
	}

	v.mu.Lock()
	period := v.period
	v.mu.Unlock()

	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(period),
		gocron.NewTask(v.Refresh),
		gocron.WithName(fmt.Sprintf("tree-refresh-%s", v.id)),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create tree refresh job: %w", err)
	}
	s.Start()

	v.mu.Lock()
	v.scheduler = s
	v.mu.Unlock()
	slog.Debug("Tree refresh scheduler started", logfields.Widget(v.title), slog.Duration("period", period))
	return nil
}

// StopScheduler stops the gocron job; Poll falls back to timestamp checks.
func (v *TreeView) StopScheduler() error {
	v.mu.Lock()
	s := v.scheduler
	v.scheduler = nil
	v.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Shutdown()
}

// Select publishes a plot request for the metric node displaying key and
// returns the node. It fails when key is not in the current tree.
func (v *TreeView) Select(ctx context.Context, key registry.MetricKey) (Node, error) {
	node, ok := Lookup(v.Roots(), key)
	if !ok {
		return Node{}, ferrors.NewError(ferrors.CategoryNotFound, "metric not in namespace tree").
			WithContext("metric", key.String()).
			Build()
	}
	if v.bus != nil {
		unit := registry.UnitNone
		if node.Entry.Description != nil {
			unit = node.Entry.Description.Unit
		}
		req := events.PlotRequested{Key: key, Unit: unit, Source: v.title}
		if err := v.bus.Publish(ctx, req); err != nil {
			return node, err
		}
	}
	return node, nil
}
