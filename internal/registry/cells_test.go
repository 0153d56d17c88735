package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCounterCell_Absolute(t *testing.T) {
	var c CounterCell
	c.Increment(5)
	c.Absolute(3)
	require.Equal(t, uint64(5), c.Value())
	c.Absolute(9)
	require.Equal(t, uint64(9), c.Value())
}

func TestGaugeCell_ConcurrentIncrement(t *testing.T) {
	var g GaugeCell
	g.Set(10)

	var eg errgroup.Group
	for range 8 {
		eg.Go(func() error {
			for range 1000 {
				g.Increment(1)
				g.Decrement(0.5)
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	require.InDelta(t, 10+8*1000*0.5, g.Value(), 1e-9)
}

func TestHistogramCell_RecentIsNewestFirst(t *testing.T) {
	var h HistogramCell
	for i := range 2*blockSize + 10 {
		h.Record(float64(i))
	}

	var got []float64
	h.Recent(func(v float64) bool {
		got = append(got, v)
		return len(got) < 3
	})
	last := float64(2*blockSize + 9)
	require.Equal(t, []float64{last, last - 1, last - 2}, got)

	var total int
	h.Data(func(s []float64) { total += len(s) })
	require.Equal(t, h.Len(), total)
}

func TestHistogramCell_ConcurrentRecord(t *testing.T) {
	var h HistogramCell
	var eg errgroup.Group
	for w := range 16 {
		eg.Go(func() error {
			for i := range 500 {
				h.Record(float64(w*1000 + i))
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	require.Equal(t, 16*500, h.Len())
}

func TestKind_ParseRoundTrip(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}
	_, err := ParseKind("summary")
	require.Error(t, err)
}

func TestUnit_Labels(t *testing.T) {
	require.Equal(t, "ms", UnitMilliseconds.Label())
	require.Equal(t, "", UnitCount.Label())
	u, err := ParseUnit("milliseconds")
	require.NoError(t, err)
	require.Equal(t, UnitMilliseconds, u)
	u, err = ParseUnit("")
	require.NoError(t, err)
	require.Equal(t, UnitNone, u)
	_, err = ParseUnit("parsecs")
	require.Error(t, err)
}
