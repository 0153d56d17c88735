package selfmetrics

import "time"

// Recorder receives measurements of the engine's own work. All methods must
// be safe for concurrent use.
type Recorder interface {
	ObserveCycle(d time.Duration)
	ObserveSearch(d time.Duration, results int)
	ObserveTreeRefresh(d time.Duration, nodes int)
	AddDroppedPaths(n int)
	SetRegisteredMetrics(n int)
	IncRejectedReconfigure(kind string)
}

// NoopRecorder is a Recorder that does nothing (default when self metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveCycle(time.Duration)            {}
func (NoopRecorder) ObserveSearch(time.Duration, int)      {}
func (NoopRecorder) ObserveTreeRefresh(time.Duration, int) {}
func (NoopRecorder) AddDroppedPaths(int)                   {}
func (NoopRecorder) SetRegisteredMetrics(int)              {}
func (NoopRecorder) IncRejectedReconfigure(string)         {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
