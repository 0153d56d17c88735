package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyMetric     = "metric"
	KeyKind       = "kind"
	KeyQuery      = "query"
	KeyCycle      = "cycle"
	KeyDurationMS = "duration_ms"
	KeyWindowSize = "window_size"
	KeyResults    = "results"
	KeyTaskID     = "task_id"
	KeyWidget     = "widget"
	KeyPath       = "path"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Metric(name string) slog.Attr     { return slog.String(KeyMetric, name) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Query(q string) slog.Attr         { return slog.String(KeyQuery, q) }
func Cycle(n uint64) slog.Attr         { return slog.Uint64(KeyCycle, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func WindowSize(n int) slog.Attr       { return slog.Int(KeyWindowSize, n) }
func Results(n int) slog.Attr          { return slog.Int(KeyResults, n) }
func TaskID(id string) slog.Attr       { return slog.String(KeyTaskID, id) }
func Widget(name string) slog.Attr     { return slog.String(KeyWidget, name) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
