package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("bad window").Build(), 2},
		{"not found", NewError(CategoryNotFound, "no plot").Build(), 3},
		{"already exists", ConflictError("config exists").Build(), 4},
		{"config", ConfigError("bad yaml").Build(), 7},
		{"filesystem", NewError(CategoryFileSystem, "missing").Build(), 8},
		{"internal", InternalError("bug").Build(), 10},
		{"runtime", RuntimeError("bus closed").Build(), 12},
		{"unknown category", NewError("other", "x").Build(), 1},
		{"unclassified", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	internal := InternalError("invariant broken").Build()
	require.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(internal))
	require.Equal(t, "Error: internal: invariant broken", verbose.FormatError(internal))
	require.Equal(t, "Error: validation: window size", quiet.FormatError(ValidationError("window size").Build()))
	require.Equal(t, "Error: boom", quiet.FormatError(errors.New("boom")))
	require.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)

	code := adapter.Report(&out, ConfigError("bad yaml").WithContext("path", "x.yaml").Build())
	require.Equal(t, 7, code)
	require.Equal(t, "Error: config: bad yaml [path=x.yaml]\n", out.String())
	require.Contains(t, logs.String(), "level=ERROR")
	require.Contains(t, logs.String(), "error.path=x.yaml")

	logs.Reset()
	out.Reset()
	require.Equal(t, 4, adapter.Report(&out, ConflictError("exists").Build()))
	require.Contains(t, logs.String(), "level=WARN")

	require.Zero(t, adapter.Report(&out, nil))
}
