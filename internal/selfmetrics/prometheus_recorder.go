package selfmetrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "metricscope"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                sync.Once
	cycleDuration       prom.Histogram
	searchDuration      prom.Histogram
	searchResults       prom.Gauge
	treeRefreshDuration prom.Histogram
	treeNodes           prom.Gauge
	droppedPaths        prom.Counter
	registeredMetrics   prom.Gauge
	rejectedReconfigure *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.cycleDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one consume/reset aggregation cycle",
			Buckets:   prom.ExponentialBuckets(0.0001, 2, 14),
		})
		pr.searchDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of background registry searches",
			Buckets:   prom.DefBuckets,
		})
		pr.searchResults = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned by the last search",
		})
		pr.treeRefreshDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "tree_refresh_duration_seconds",
			Help:      "Duration of namespace tree rebuilds",
			Buckets:   prom.DefBuckets,
		})
		pr.treeNodes = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "tree_metrics",
			Help:      "Number of metrics shown by the last namespace tree",
		})
		pr.droppedPaths = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "tree_dropped_paths_total",
			Help:      "Metric names dropped from the namespace tree as malformed",
		})
		pr.registeredMetrics = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_metrics",
			Help:      "Number of metrics in the registry",
		})
		pr.rejectedReconfigure = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_reconfigurations_total",
			Help:      "Plot reconfigurations rejected as invalid, by metric kind",
		}, []string{"kind"})
		reg.MustRegister(pr.cycleDuration, pr.searchDuration, pr.searchResults, pr.treeRefreshDuration,
			pr.treeNodes, pr.droppedPaths, pr.registeredMetrics, pr.rejectedReconfigure)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveCycle(d time.Duration) {
	if p == nil || p.cycleDuration == nil {
		return
	}
	p.cycleDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveSearch(d time.Duration, results int) {
	if p == nil || p.searchDuration == nil {
		return
	}
	p.searchDuration.Observe(d.Seconds())
	p.searchResults.Set(float64(results))
}

func (p *PrometheusRecorder) ObserveTreeRefresh(d time.Duration, nodes int) {
	if p == nil || p.treeRefreshDuration == nil {
		return
	}
	p.treeRefreshDuration.Observe(d.Seconds())
	p.treeNodes.Set(float64(nodes))
}

func (p *PrometheusRecorder) AddDroppedPaths(n int) {
	if p == nil || p.droppedPaths == nil || n <= 0 {
		return
	}
	p.droppedPaths.Add(float64(n))
}

func (p *PrometheusRecorder) SetRegisteredMetrics(n int) {
	if p == nil || p.registeredMetrics == nil {
		return
	}
	p.registeredMetrics.Set(float64(n))
}

func (p *PrometheusRecorder) IncRejectedReconfigure(kind string) {
	if p == nil || p.rejectedReconfigure == nil {
		return
	}
	p.rejectedReconfigure.WithLabelValues(kind).Inc()
}
