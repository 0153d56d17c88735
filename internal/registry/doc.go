// Package registry is the process-wide store of counters, gauges and
// histograms.
//
// Producers obtain a cell once (GetOrCreateCounter and friends, or the
// ambient Counter/Gauge/Histogram functions once a registry is installed)
// and then record through it with atomic operations only. Consumers read
// the same cells once per aggregation cycle, and the cycle driver calls
// ClearHistogramSamples after every consumer has drained its histograms.
//
// Identity is (name, labels, kind): the same name may exist as a counter, a
// gauge and a histogram at once, and every distinct label set is its own
// metric. Descriptions are keyed by (name, kind) only and the first
// description registered wins.
package registry
