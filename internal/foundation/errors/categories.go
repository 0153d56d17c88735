package errors

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// ErrorCategory says what kind of failure an error is. The CLI derives its
// exit code from it.
type ErrorCategory string

const (
	// CategoryConfig covers unreadable or undecodable configuration.
	CategoryConfig        ErrorCategory = "config"
	CategoryValidation    ErrorCategory = "validation"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryAlreadyExists ErrorCategory = "already_exists"
	CategoryFileSystem    ErrorCategory = "filesystem"

	// CategoryRuntime covers failures of running machinery: a closed event
	// bus, a stopped task pool, a file watcher that cannot start.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps categories to process exit codes. Unlisted categories and
// unclassified errors exit with 1.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation:    2,
	CategoryNotFound:      3,
	CategoryAlreadyExists: 4,
	CategoryConfig:        7,
	CategoryFileSystem:    8,
	CategoryInternal:      10,
	CategoryRuntime:       12,
}

// ErrorSeverity tells the caller what survives the failure.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Nothing sensible can continue
	SeverityError   ErrorSeverity = "error"   // The operation failed; prior state is kept
	SeverityWarning ErrorSeverity = "warning" // Benign; callers may ignore it
)

func (s ErrorSeverity) level() slog.Level {
	if s == SeverityWarning {
		return slog.LevelWarn
	}
	return slog.LevelError
}

// ErrorContext is structured detail attached to an error, such as the
// offending value or file path.
type ErrorContext map[string]any

// GetString returns a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// with returns a copy of c with key set. The receiver is never modified, so
// errors derived from one another do not share context.
func (c ErrorContext) with(key string, value any) ErrorContext {
	out := make(ErrorContext, len(c)+1)
	maps.Copy(out, c)
	out[key] = value
	return out
}

func (c ErrorContext) sortedKeys() []string {
	return slices.Sorted(maps.Keys(c))
}

// attrs renders the context as slog attributes in key order.
func (c ErrorContext) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, len(c))
	for _, k := range c.sortedKeys() {
		attrs = append(attrs, slog.Any(k, c[k]))
	}
	return attrs
}

// String renders the context as "k=v k=v" in key order.
func (c ErrorContext) String() string {
	var b strings.Builder
	for i, k := range c.sortedKeys() {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, c[k])
	}
	return b.String()
}
