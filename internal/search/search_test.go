package search

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/metricscope/internal/events"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/task"
)

func newRegistry(names ...string) *registry.Registry {
	reg := registry.New()
	for _, n := range names {
		reg.GetOrCreateCounter(registry.NewKey(n))
	}
	return reg
}

func names(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Key.Name()
	}
	return out
}

func TestFuzzyScorer(t *testing.T) {
	var s FuzzyScorer
	_, ok := s.Score("fps", "frames_per_second")
	assert.True(t, ok)
	_, ok = s.Score("fbb", "foo::bar::baz")
	assert.True(t, ok)
	_, ok = s.Score("xyz", "foo::bar::baz")
	assert.False(t, ok)
	_, ok = s.Score("zab", "foo::bar::baz")
	assert.False(t, ok, "characters must appear in order")
}

func TestSubstringScorer(t *testing.T) {
	var s SubstringScorer
	early, ok := s.Score("frame", "Frame_time")
	require.True(t, ok)
	late, ok := s.Score("time", "frame_time")
	require.True(t, ok)
	require.Greater(t, early, late)
	_, ok = s.Score("fps", "frame_time")
	require.False(t, ok)
}

func TestIndex_Search(t *testing.T) {
	reg := newRegistry("render::frame_time", "render::fps", "physics::bodies")
	reg.Describe("render::fps", registry.KindCounter, registry.UnitCountPerSecond, "frames per second")
	ix := NewIndex(reg, nil, nil)

	all := ix.Search("")
	SortByName(all)
	require.Equal(t, []string{"physics::bodies", "render::fps", "render::frame_time"}, names(all))

	hits := ix.Search("render")
	SortByName(hits)
	require.Equal(t, []string{"render::fps", "render::frame_time"}, names(hits))
	require.Equal(t, registry.UnitCountPerSecond, hits[0].Unit())
	require.Nil(t, hits[1].Description)

	require.Empty(t, ix.Search("qqq"))
}

func TestSortByScore(t *testing.T) {
	results := NewIndex(newRegistry("b_frame", "frame", "a_frame"), SubstringScorer{}, nil).Search("frame")
	SortByScore(results)
	require.Equal(t, "frame", results[0].Key.Name())
	require.Equal(t, []string{"frame", "a_frame", "b_frame"}, names(results))
}

func TestBar_FirstPollListsEverything(t *testing.T) {
	bar, err := NewBar(NewIndex(newRegistry("b", "a", "c"), nil, nil), task.NewPool(1), BarOptions{})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return bar.Poll(time.Now()) }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"a", "b", "c"}, names(bar.Results()))
}

func TestBar_Debounce(t *testing.T) {
	bar, err := NewBar(NewIndex(newRegistry("a"), nil, nil), task.NewPool(1), BarOptions{Debounce: 250 * time.Millisecond})
	require.NoError(t, err)
	t0 := time.Now()

	// The initial empty search starts immediately.
	bar.Poll(t0)
	require.Eventually(t, func() bool { return bar.Poll(t0) }, 2*time.Second, 5*time.Millisecond)

	bar.SetInput("a", t0)
	bar.Poll(t0.Add(100 * time.Millisecond))
	require.False(t, bar.Searching(), "input is not stable yet")

	bar.SetInput("ab", t0.Add(200*time.Millisecond))
	bar.Poll(t0.Add(400 * time.Millisecond))
	require.False(t, bar.Searching(), "each change restarts the quiet period")

	bar.Poll(t0.Add(451 * time.Millisecond))
	require.True(t, bar.Searching())
	require.Equal(t, "ab", bar.Input())
}

// gateScorer blocks every search for the query "block" until released.
type gateScorer struct {
	mu      sync.Mutex
	started []string
	gate    chan struct{}
}

func (g *gateScorer) Score(query, candidate string) (int, bool) {
	g.mu.Lock()
	if len(g.started) == 0 || g.started[len(g.started)-1] != query {
		g.started = append(g.started, query)
	}
	g.mu.Unlock()
	if query == "block" {
		<-g.gate
	}
	return SubstringScorer{}.Score(query, candidate)
}

func (g *gateScorer) queries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.started)
}

func TestBar_SingleFlightAndSupersession(t *testing.T) {
	scorer := &gateScorer{gate: make(chan struct{})}
	reg := newRegistry("alpha::x", "beta::x", "block::y")
	bar, err := NewBar(NewIndex(reg, scorer, nil), task.NewPool(4), BarOptions{Debounce: time.Millisecond})
	require.NoError(t, err)

	t0 := time.Now()
	bar.SetInput("block", t0)
	bar.Poll(t0.Add(time.Second))
	require.True(t, bar.Searching())
	require.Eventually(t, func() bool { return len(scorer.queries()) == 1 }, 2*time.Second, time.Millisecond)

	bar.SetInput("x", t0.Add(time.Second))
	for i := range 20 {
		require.False(t, bar.Poll(t0.Add(time.Duration(2+i)*time.Second)))
	}
	require.Equal(t, []string{"block"}, scorer.queries(), "no second search while one is in flight")

	close(scorer.gate)
	require.Eventually(t, func() bool {
		bar.Poll(time.Now().Add(time.Hour))
		assert.NotContains(t, names(bar.Results()), "block::y", "superseded results are never shown")
		return len(bar.Results()) == 2
	}, 2*time.Second, time.Millisecond)

	require.Equal(t, []string{"alpha::x", "beta::x"}, names(bar.Results()))
	require.Equal(t, []string{"block", "x"}, scorer.queries())
}

func TestBar_SelectPublishesPlotRequest(t *testing.T) {
	reg := newRegistry("a", "b")
	reg.Describe("b", registry.KindCounter, registry.UnitBytes, "")
	bus := events.NewBus()
	defer bus.Close()
	ch, unsubscribe := events.Subscribe[events.PlotRequested](bus, 1)
	defer unsubscribe()

	bar, err := NewBar(NewIndex(reg, nil, nil), task.NewPool(1), BarOptions{Bus: bus, Name: "finder"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return bar.Poll(time.Now()) }, 2*time.Second, 5*time.Millisecond)

	res, err := bar.Select(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "b", res.Key.Name())

	req := <-ch
	require.Equal(t, res.Key, req.Key)
	require.Equal(t, registry.UnitBytes, req.Unit)
	require.Equal(t, "finder", req.Source)

	_, err = bar.Select(context.Background(), 5)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNotFound))
}

func TestNewBar_Validation(t *testing.T) {
	_, err := NewBar(nil, task.NewPool(1), BarOptions{})
	require.Error(t, err)
	_, err = NewBar(NewIndex(registry.New(), nil, nil), nil, BarOptions{})
	require.Error(t, err)
}
