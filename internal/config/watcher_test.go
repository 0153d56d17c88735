package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsValidChanges(t *testing.T) {
	path := writeConfig(t, "cycle:\n  interval: 16ms\n")

	reloads := make(chan *Config, 4)
	w, err := NewWatcher(path, 20*time.Millisecond, func(cfg *Config) { reloads <- cfg })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// An invalid file is skipped.
	require.NoError(t, os.WriteFile(path, []byte("cycle:\n  interval: -1s\n"), 0o600))
	select {
	case cfg := <-reloads:
		t.Fatalf("invalid config delivered: %+v", cfg)
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("cycle:\n  interval: 50ms\n"), 0o600))
	select {
	case cfg := <-reloads:
		require.Equal(t, 50*time.Millisecond, cfg.Cycle.Interval)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writeConfig(t, "")

	reloads := make(chan *Config, 1)
	w, err := NewWatcher(path, 10*time.Millisecond, func(cfg *Config) { reloads <- cfg })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(path+".bak", []byte("x"), 0o600))
	select {
	case <-reloads:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(150 * time.Millisecond):
	}

	w.Stop()
	w.Stop()
}

func TestNewWatcher_RequiresCallback(t *testing.T) {
	_, err := NewWatcher("metricscope.yaml", 0, nil)
	require.Error(t, err)
}
