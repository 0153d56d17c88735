// Package selfmetrics instruments the metrics engine itself.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so instrumentation never requires nil checks at call sites.
// PrometheusRecorder registers its collectors on a caller-owned
// prometheus.Registry; nothing is exported over the network.
package selfmetrics
