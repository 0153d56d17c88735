package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
)

func TestKey_LabelsAreIdentity(t *testing.T) {
	a := KeyFromPairs("requests", "method", "GET", "path", "/")
	b := KeyFromPairs("requests", "path", "/", "method", "GET")
	c := KeyFromPairs("requests", "method", "POST", "path", "/")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, NewKey("requests"))
	require.Equal(t, "requests{method=GET,path=/}", a.String())
	require.Equal(t, []Label{{"method", "GET"}, {"path", "/"}}, a.Labels())
	require.Nil(t, NewKey("plain").Labels())
}

func TestMetricKey_KindIsIdentity(t *testing.T) {
	k := NewKey("frame_time")
	seen := map[MetricKey]int{}
	for _, kind := range Kinds {
		seen[NewMetricKey(k, kind)]++
	}
	require.Len(t, seen, 3)
	require.Equal(t, "frame_time (gauge)", NewMetricKey(k, KindGauge).Title(0))
	require.Equal(t, "frame_time (gauge) 2", NewMetricKey(k, KindGauge).Title(2))
}

func TestRegistry_SameNameDifferentKinds(t *testing.T) {
	r := New()
	k := NewKey("frame_time")
	r.GetOrCreateCounter(k).Increment(3)
	r.GetOrCreateGauge(k).Set(1.5)
	r.GetOrCreateHistogram(k).Record(16.6)

	require.Equal(t, 3, r.Len())
	c, ok := r.Counter(k)
	require.True(t, ok)
	require.Equal(t, uint64(3), c.Value())
	g, _ := r.Gauge(k)
	require.InDelta(t, 1.5, g.Value(), 1e-12)
	h, _ := r.Histogram(k)
	require.Equal(t, 1, h.Len())

	_, ok = r.Counter(NewKey("missing"))
	require.False(t, ok)
}

func TestRegistry_ConcurrentGetOrCreateSharesCell(t *testing.T) {
	r := New()
	key := KeyFromPairs("shared", "worker", "all")

	const workers, perWorker = 32, 1000
	cells := make([]*CounterCell, workers)
	var g errgroup.Group
	for i := range workers {
		g.Go(func() error {
			c := r.GetOrCreateCounter(key)
			cells[i] = c
			for range perWorker {
				c.Increment(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, c := range cells {
		require.Same(t, cells[0], c)
	}
	require.Equal(t, uint64(workers*perWorker), cells[0].Value())
	require.Equal(t, 1, r.Len())
}

func TestRegistry_DescribeFirstWriterWins(t *testing.T) {
	r := New()
	r.Describe("latency", KindHistogram, UnitMilliseconds, "a")
	r.Describe("latency", KindHistogram, UnitSeconds, "b")

	d, ok := r.Description("latency", KindHistogram)
	require.True(t, ok)
	require.Equal(t, Description{Unit: UnitMilliseconds, Text: "a"}, d)

	_, ok = r.Description("latency", KindGauge)
	require.False(t, ok, "descriptions are per kind")
}

func TestRegistry_ConcurrentDescribeKeepsExactlyOne(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Describe("contended", KindCounter, UnitCount, fmt.Sprintf("writer-%d", i))
		}()
	}
	wg.Wait()

	d, ok := r.Description("contended", KindCounter)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(d.Text, "writer-"))
	for range 10 {
		again, _ := r.Description("contended", KindCounter)
		require.Equal(t, d, again)
	}
}

func TestRegistry_ListAllAttachesDescriptionsByFamily(t *testing.T) {
	r := New()
	r.GetOrCreateGauge(KeyFromPairs("visible_entities", "camera", "1"))
	r.GetOrCreateGauge(KeyFromPairs("visible_entities", "camera", "2"))
	r.GetOrCreateCounter(NewKey("alpha"))
	r.Describe("visible_entities", KindGauge, UnitCount, "entities visible to a camera")

	entries := r.ListAll()
	require.Len(t, entries, 3)
	require.Equal(t, "alpha", entries[0].Name())
	require.Nil(t, entries[0].Description)
	for _, e := range entries[1:] {
		require.Equal(t, "visible_entities", e.Name())
		require.NotNil(t, e.Description)
		require.Equal(t, "entities visible to a camera", e.Description.Text)
	}
	require.True(t, slices.IsSortedFunc(entries, func(a, b Entry) int { return a.Key.Compare(b.Key) }))
}

func TestRegistry_ClearHistogramSamples(t *testing.T) {
	r := New()
	h1 := r.GetOrCreateHistogram(NewKey("h1"))
	h2 := r.GetOrCreateHistogram(NewKey("h2"))
	for i := range 600 {
		h1.Record(float64(i))
	}
	h2.RecordMany(1, 2, 3)

	r.ClearHistogramSamples()
	require.Zero(t, h1.Len())
	require.Zero(t, h2.Len())

	h1.Record(42)
	var got []float64
	h1.Data(func(s []float64) { got = append(got, s...) })
	require.Equal(t, []float64{42}, got)
}

func TestRegistry_FuzzySearch(t *testing.T) {
	r := New()
	r.GetOrCreateCounter(NewKey("foo::bar"))
	r.GetOrCreateGauge(NewKey("fizz"))
	r.Describe("fizz", KindGauge, UnitPercent, "fizziness")

	contains := MatcherFunc(func(q, c string) (int, bool) {
		return len(q), strings.Contains(c, q)
	})

	all := r.FuzzySearch("", contains)
	require.Len(t, all, 2)

	hits := r.FuzzySearch("fi", contains)
	require.Len(t, hits, 1)
	assert.Equal(t, "fizz", hits[0].Key.Name())
	assert.Equal(t, UnitPercent, hits[0].Unit())
	assert.Equal(t, 2, hits[0].Score)

	require.Empty(t, r.FuzzySearch("zzz", contains))
}

func TestInstall(t *testing.T) {
	t.Cleanup(uninstall)
	uninstall()

	// Ambient functions are safe before installation.
	Counter("early").Increment(1)
	Histogram("early").Record(1)
	require.Zero(t, Histogram("early").Len())

	first := New()
	require.NoError(t, Install(first))
	require.NoError(t, Install(first), "re-installing the same registry is not a conflict")
	require.Same(t, first, Default())

	err := Install(New())
	require.ErrorIs(t, err, ErrRecorderInstalled)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryAlreadyExists))
	require.Same(t, first, Default())

	Counter("ambient", "k", "v").Increment(2)
	DescribeCounter("ambient", UnitCount, "via default")
	c, ok := first.Counter(KeyFromPairs("ambient", "k", "v"))
	require.True(t, ok)
	require.Equal(t, uint64(2), c.Value())
	d, ok := first.Description("ambient", KindCounter)
	require.True(t, ok)
	require.Equal(t, "via default", d.Text)

	require.Error(t, Install(nil))
}

func TestInstallOrShare(t *testing.T) {
	t.Cleanup(uninstall)
	uninstall()

	first := New()
	InstallOrShare(first)
	InstallOrShare(New())
	require.Same(t, first, Default())
}
