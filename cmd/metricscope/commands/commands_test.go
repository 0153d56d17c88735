package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/metricscope/internal/config"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/registry"
)

func newTestGlobal() (*Global, *bytes.Buffer) {
	var out bytes.Buffer
	return NewGlobal(&out), &out
}

func demoRegistry() *registry.Registry {
	reg := registry.New()
	seedDemo(reg)
	return reg
}

func TestParsePlotKeys(t *testing.T) {
	keys, err := ParsePlotKeys([]string{"gauge:cycle_time", "counter:foo::bar::baz"})
	require.NoError(t, err)
	require.Equal(t, []registry.MetricKey{
		registry.NewMetricKey(registry.NewKey("cycle_time"), registry.KindGauge),
		registry.NewMetricKey(registry.NewKey("foo::bar::baz"), registry.KindCounter),
	}, keys)

	for _, bad := range []string{"cycle_time", "gauge:", "meter:x"} {
		_, err := ParsePlotKeys([]string{bad})
		require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation), bad)
	}
}

func TestRunTree(t *testing.T) {
	g, out := newTestGlobal()
	require.NoError(t, RunTree(g, demoRegistry(), "::"))

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "fizz/\n"), text)
	assert.Contains(t, text, "  bat (counter): Synthetic counter\n")
	assert.Contains(t, text, "  partial::collapsed (counter): Synthetic counter\n")
	assert.Contains(t, text, "fully::collapsed::path (counter): Synthetic counter\n")
	assert.Contains(t, text, "foo/\n  bar/\n    baz (counter)")
	assert.NotContains(t, text, "edge")
	assert.Contains(t, text, "14 metrics shown, 11 hidden with malformed paths")
}

func TestRunSearch(t *testing.T) {
	t.Run("sorted by name", func(t *testing.T) {
		g, out := newTestGlobal()
		require.NoError(t, RunSearch(g, demoRegistry(), "baz", ScorerByName("substring"), false))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 7)
		assert.Contains(t, lines[0], "foo::bar::baz (counter)")
		assert.Contains(t, lines[3], "foo::foo::baz (counter)")
		assert.Equal(t, "6 results", lines[6])
	})

	t.Run("empty query lists everything", func(t *testing.T) {
		g, out := newTestGlobal()
		require.NoError(t, RunSearch(g, demoRegistry(), "", ScorerByName("fuzzy"), true))
		assert.Contains(t, out.String(), "25 results")
	})
}

func TestRunInit(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "metricscope.yaml")
	require.NoError(t, RunInit(&out, path, false))
	assert.Contains(t, out.String(), "initialized successfully")

	_, err := config.Load(path)
	require.NoError(t, err)

	out.Reset()
	err = RunInit(&out, path, false)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Initialization failed")
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cli := &CLI{Config: filepath.Join(t.TempDir(), "absent.yaml")}
	cfg, err := cli.LoadConfig()
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cycle:\n  interval: -1s\n"), 0o600))
	cli.Config = bad
	_, err = cli.LoadConfig()
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestRunEngine(t *testing.T) {
	cfg := config.Default()
	cfg.Cycle.Interval = 2 * time.Millisecond
	cfg.Search.Debounce = 10 * time.Millisecond

	keys, err := ParsePlotKeys([]string{"gauge:cycle_time", "histogram:cycle_time", "counter:foo::bar::baz"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	g, out := newTestGlobal()
	err = RunEngine(ctx, g, cfg, EngineOptions{
		Producers:   2,
		Plots:       keys,
		Search:      "fully",
		SelfMetrics: true,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "cycle_time (gauge)")
	assert.Contains(t, text, "cycle_time (histogram)")
	assert.Contains(t, text, "foo::bar::baz (counter)")
	assert.Contains(t, text, "fully::collapsed::path (counter)")
	assert.Contains(t, text, "4 plots")
	assert.Contains(t, text, "metricscope_cycle_duration_seconds")
}
