// Package errors provides the classified error primitives used across metricscope.
//
// Errors carry a category (what kind of failure), a severity (how much it
// matters to the caller) and a small structured context map. The aggregation
// engine distinguishes three classes of failure:
//
//   - benign conditions (duplicate descriptions, duplicate recorder
//     installation, malformed namespace paths) which are normalized or dropped
//     and at most surface as SeverityWarning errors the caller may ignore
//   - configuration errors (empty boundary list, zero buckets) which are
//     rejected while the prior configuration stays in effect
//   - internal invariant violations, which panic via MustInvariant
//
// Example usage:
//
//	err := errors.ValidationError("bucket count must be > 0").
//		WithContext("count", 0).
//		Build()
package errors
