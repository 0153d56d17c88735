package selfmetrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveCycle(2 * time.Millisecond)
	pr.ObserveSearch(10*time.Millisecond, 7)
	pr.ObserveTreeRefresh(time.Millisecond, 12)
	pr.AddDroppedPaths(3)
	pr.AddDroppedPaths(0)
	pr.SetRegisteredMetrics(42)
	pr.IncRejectedReconfigure("histogram")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 8)

	require.InDelta(t, 7, testutil.ToFloat64(pr.searchResults), 0)
	require.InDelta(t, 12, testutil.ToFloat64(pr.treeNodes), 0)
	require.InDelta(t, 3, testutil.ToFloat64(pr.droppedPaths), 0)
	require.InDelta(t, 42, testutil.ToFloat64(pr.registeredMetrics), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.rejectedReconfigure.WithLabelValues("histogram")), 0)
	require.Equal(t, 1, testutil.CollectAndCount(pr.cycleDuration))
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.ObserveCycle(time.Second)
		pr.ObserveSearch(time.Second, 1)
		pr.ObserveTreeRefresh(time.Second, 1)
		pr.AddDroppedPaths(1)
		pr.SetRegisteredMetrics(1)
		pr.IncRejectedReconfigure("gauge")
	})
	require.IsType(t, NoopRecorder{}, OrNoop(nil))

	real := NewPrometheusRecorder(nil)
	require.Same(t, real, OrNoop(real))
}
