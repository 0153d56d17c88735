package histogram

import (
	"math"
	"slices"
	"sort"

	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
)

// rangeEpsilon is the minimum distance kept between Min and Max.
const rangeEpsilon = 0.001

// BucketRange generates Count uniformly wide buckets between Min and Max.
type BucketRange struct {
	Count int     `yaml:"count"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// DefaultBucketRange is ten buckets over [0, 10].
func DefaultBucketRange() BucketRange {
	return BucketRange{Count: 10, Min: 0, Max: 10}
}

// ClampMin keeps Min strictly below Max by lowering Min.
func (r *BucketRange) ClampMin() {
	r.Min = math.Min(r.Min, r.Max-rangeEpsilon)
}

// ClampMax keeps Max strictly above Min by raising Max.
func (r *BucketRange) ClampMax() {
	r.Max = math.Max(r.Min+rangeEpsilon, r.Max)
}

// Bounds returns the Count+1 boundaries of the range. A degenerate range
// (Min >= Max) is widened with ClampMax first. Count < 1 is rejected.
func (r BucketRange) Bounds() ([]float64, error) {
	if r.Count < 1 {
		return nil, ferrors.ValidationError("bucket count must be > 0").
			WithContext("count", r.Count).
			Build()
	}
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return nil, ferrors.ValidationError("bucket range must be finite").
			WithContext("min", r.Min).
			WithContext("max", r.Max).
			Build()
	}
	r.ClampMax()
	width := (r.Max - r.Min) / float64(r.Count)
	bounds := make([]float64, r.Count+1)
	for i := range bounds {
		bounds[i] = r.Min + float64(i)*width
	}
	return bounds, nil
}

// NormalizeBounds returns a sorted copy of bounds without duplicates. It
// rejects an empty list and NaN boundaries.
func NormalizeBounds(bounds []float64) ([]float64, error) {
	if len(bounds) == 0 {
		return nil, ferrors.ValidationError("at least one bucket boundary is required").Build()
	}
	if slices.ContainsFunc(bounds, math.IsNaN) {
		return nil, ferrors.ValidationError("bucket boundaries cannot be NaN").Build()
	}
	sorted := slices.Clone(bounds)
	slices.Sort(sorted)
	return slices.Compact(sorted), nil
}

// BucketIndex returns the bucket of v for strictly sorted bounds: the
// smallest i with bounds[i] >= v, or len(bounds) (the overflow bucket) when
// v is above every boundary. NaN lands in the overflow bucket.
func BucketIndex(bounds []float64, v float64) int {
	return sort.SearchFloat64s(bounds, v)
}

// Bar is one bucket prepared for a bar chart.
type Bar struct {
	Center float64
	Width  float64
	Count  uint64
	// Open marks the two unbounded outer buckets.
	Open bool
}

// makeBars lays out counts over bounds. Inner buckets span their boundaries;
// the two open-ended outer buckets get the average inner width.
func makeBars(bounds []float64, counts []uint64) []Bar {
	ferrors.MustInvariant(len(counts) == len(bounds)+1,
		"bucket counts %d do not match %d boundaries", len(counts), len(bounds))

	bars := make([]Bar, len(counts))
	avgWidth := 1.0
	if len(bounds) > 1 {
		avgWidth = (bounds[len(bounds)-1] - bounds[0]) / float64(len(bounds)-1)
	}
	for i := 1; i < len(bounds); i++ {
		start, end := bounds[i-1], bounds[i]
		bars[i] = Bar{Center: 0.5 * (start + end), Width: end - start, Count: counts[i]}
	}
	first, last := bounds[0], bounds[len(bounds)-1]
	bars[0] = Bar{Center: first - 0.5*avgWidth, Width: avgWidth, Count: counts[0], Open: true}
	bars[len(bars)-1] = Bar{Center: last + 0.5*avgWidth, Width: avgWidth, Count: counts[len(counts)-1], Open: true}
	return bars
}
