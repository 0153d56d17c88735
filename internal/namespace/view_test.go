package namespace

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/metricscope/internal/events"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/selfmetrics"
	"git.home.luguber.info/inful/metricscope/internal/task"
)

type treeRecorder struct {
	selfmetrics.NoopRecorder
	mu        sync.Mutex
	refreshes []int
	dropped   int
}

func (r *treeRecorder) ObserveTreeRefresh(_ time.Duration, nodes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refreshes = append(r.refreshes, nodes)
}

func (r *treeRecorder) AddDroppedPaths(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped += n
}

func pollUntil(t *testing.T, v *TreeView, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool {
		v.Poll(time.Now())
		return cond()
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTreeView_RefreshesInBackground(t *testing.T) {
	reg := registry.New()
	reg.GetOrCreateCounter(registry.NewKey("foo::bar"))
	reg.GetOrCreateCounter(registry.NewKey("::bad"))
	rec := &treeRecorder{}

	v, err := NewTreeView("Namespaces", reg, task.NewPool(1), ViewOptions{RefreshPeriod: time.Hour, Recorder: rec})
	require.NoError(t, err)
	require.NotEmpty(t, v.ID())
	require.Empty(t, v.Roots(), "nothing is built before the first poll")

	pollUntil(t, v, func() bool { return Count(v.Roots()) == 1 })

	reg.GetOrCreateCounter(registry.NewKey("foo::baz"))
	for range 5 {
		require.False(t, v.Poll(time.Now()), "no rebuild before the refresh period")
	}
	require.Equal(t, 1, Count(v.Roots()))

	v.Refresh()
	pollUntil(t, v, func() bool { return Count(v.Roots()) == 2 })

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Equal(t, []int{1, 2}, rec.refreshes)
	require.Equal(t, 2, rec.dropped)
}

func TestTreeView_PeriodElapsedTriggersRebuild(t *testing.T) {
	reg := registry.New()
	reg.GetOrCreateCounter(registry.NewKey("a"))

	v, err := NewTreeView("t", reg, task.NewPool(1), ViewOptions{RefreshPeriod: time.Minute})
	require.NoError(t, err)
	pollUntil(t, v, func() bool { return Count(v.Roots()) == 1 })

	reg.GetOrCreateCounter(registry.NewKey("b"))
	later := time.Now().Add(2 * time.Minute)
	require.Eventually(t, func() bool {
		v.Poll(later)
		return Count(v.Roots()) == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestTreeView_Scheduler(t *testing.T) {
	reg := registry.New()
	reg.GetOrCreateGauge(registry.NewKey("a::x"))

	v, err := NewTreeView("t", reg, task.NewPool(1), ViewOptions{RefreshPeriod: 20 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, v.StartScheduler())
	t.Cleanup(func() { require.NoError(t, v.StopScheduler()) })

	pollUntil(t, v, func() bool { return Count(v.Roots()) == 1 })
	reg.GetOrCreateGauge(registry.NewKey("a::y"))
	pollUntil(t, v, func() bool { return Count(v.Roots()) == 2 })
}

func TestTreeView_SelectPublishesPlotRequest(t *testing.T) {
	reg := registry.New()
	key := registry.NewKey("render::frame_time")
	reg.GetOrCreateHistogram(key)
	reg.Describe("render::frame_time", registry.KindHistogram, registry.UnitMilliseconds, "frame time")

	bus := events.NewBus()
	defer bus.Close()
	ch, unsubscribe := events.Subscribe[events.PlotRequested](bus, 1)
	defer unsubscribe()

	v, err := NewTreeView("tree", reg, task.NewPool(1), ViewOptions{Bus: bus})
	require.NoError(t, err)
	pollUntil(t, v, func() bool { return Count(v.Roots()) == 1 })

	mk := registry.NewMetricKey(key, registry.KindHistogram)
	node, err := v.Select(context.Background(), mk)
	require.NoError(t, err)
	require.Equal(t, "render::frame_time", node.Display)

	select {
	case req := <-ch:
		require.Equal(t, mk, req.Key)
		require.Equal(t, registry.UnitMilliseconds, req.Unit)
		require.Equal(t, "tree", req.Source)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for plot request")
	}

	_, err = v.Select(context.Background(), registry.NewMetricKey(key, registry.KindCounter))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestNewTreeView_Validation(t *testing.T) {
	_, err := NewTreeView("t", nil, task.NewPool(1), ViewOptions{})
	require.Error(t, err)
	_, err = NewTreeView("t", registry.New(), nil, ViewOptions{})
	require.Error(t, err)
}
