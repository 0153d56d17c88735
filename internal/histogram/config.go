package histogram

// BucketConfig selects histogram boundaries. Explicit Bounds take precedence
// over Range.
type BucketConfig struct {
	Bounds []float64    `yaml:"boundaries,omitempty"`
	Range  *BucketRange `yaml:"range,omitempty"`
}

// DefaultBucketConfig is the default uniform range.
func DefaultBucketConfig() BucketConfig {
	r := DefaultBucketRange()
	return BucketConfig{Range: &r}
}

// Resolve returns the normalized boundaries the config describes.
func (c BucketConfig) Resolve() ([]float64, error) {
	if len(c.Bounds) > 0 {
		return NormalizeBounds(c.Bounds)
	}
	r := DefaultBucketRange()
	if c.Range != nil {
		r = *c.Range
	}
	return r.Bounds()
}
