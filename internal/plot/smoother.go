package plot

// Smoother is an exponential moving average. Each new value v moves the
// smoothed value s to (1-w)*v + w*s; the first value is taken as is.
type Smoother struct {
	weight float64
	value  float64
	primed bool
}

// NewSmoother creates a smoother with weight clamped to [0, 1].
func NewSmoother(weight float64) *Smoother {
	return &Smoother{weight: clampWeight(weight)}
}

func clampWeight(w float64) float64 {
	if w != w { // NaN
		return 0
	}
	return min(max(w, 0), 1)
}

// Add folds v into the average and returns the new smoothed value.
func (s *Smoother) Add(v float64) float64 {
	if !s.primed {
		s.value, s.primed = v, true
		return v
	}
	s.value = (1-s.weight)*v + s.weight*s.value
	return s.value
}

// Value returns the smoothed value; ok is false before the first Add.
func (s *Smoother) Value() (float64, bool) { return s.value, s.primed }

// Weight returns the smoothing weight.
func (s *Smoother) Weight() float64 { return s.weight }

// SetWeight changes the weight without discarding the current average.
func (s *Smoother) SetWeight(w float64) { s.weight = clampWeight(w) }
