package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/metricscope/internal/config"
	"git.home.luguber.info/inful/metricscope/internal/cycle"
	"git.home.luguber.info/inful/metricscope/internal/dashboard"
	"git.home.luguber.info/inful/metricscope/internal/events"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/logfields"
	"git.home.luguber.info/inful/metricscope/internal/namespace"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/runtimemetrics"
	"git.home.luguber.info/inful/metricscope/internal/search"
	"git.home.luguber.info/inful/metricscope/internal/selfmetrics"
	"git.home.luguber.info/inful/metricscope/internal/task"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Duration    time.Duration `short:"d" help:"Stop after this long (0 runs until interrupted)" default:"5s"`
	Producers   int           `short:"p" help:"Number of concurrent synthetic producers" default:"4"`
	Report      time.Duration `help:"Interval between dashboard summaries" default:"1s"`
	Plot        []string      `help:"Metrics to plot as kind:name" default:"gauge:cycle_time,histogram:cycle_time,counter:foo::bar::baz"`
	Search      string        `help:"Plot the first metric matching this query"`
	Watch       bool          `help:"Apply dashboard settings when the configuration file changes"`
	SelfMetrics bool          `name:"self-metrics" help:"Print the engine's own Prometheus metrics on exit"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	plots, err := ParsePlotKeys(r.Plot)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if r.Duration > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, r.Duration)
		defer cancelTimeout()
	}

	opts := EngineOptions{
		Producers:   r.Producers,
		Report:      r.Report,
		Plots:       plots,
		Search:      r.Search,
		SelfMetrics: r.SelfMetrics,
	}
	if r.Watch {
		opts.ConfigPath = root.Config
	}
	return RunEngine(ctx, g, cfg, opts)
}

// ParsePlotKeys parses kind:name plot specifications.
func ParsePlotKeys(specs []string) ([]registry.MetricKey, error) {
	keys := make([]registry.MetricKey, 0, len(specs))
	for _, spec := range specs {
		kindName, name, ok := strings.Cut(spec, ":")
		if !ok || name == "" {
			return nil, ferrors.ValidationError("plot must be kind:name").WithContext("plot", spec).Build()
		}
		kind, err := registry.ParseKind(kindName)
		if err != nil {
			return nil, err
		}
		keys = append(keys, registry.NewMetricKey(registry.NewKey(name), kind))
	}
	return keys, nil
}

// EngineOptions configures RunEngine.
type EngineOptions struct {
	Producers int
	// Report is the interval between summaries; zero prints only the final one.
	Report time.Duration
	// Plots are selected from the namespace tree once they appear in it.
	Plots []registry.MetricKey
	// Search, when set, plots the first result of the search bar.
	Search string
	// ConfigPath, when set, is watched for dashboard setting changes.
	ConfigPath  string
	SelfMetrics bool
}

// engine wires the aggregation components for one run.
type engine struct {
	g        *Global
	reg      *registry.Registry
	promReg  *prom.Registry
	recorder *selfmetrics.PrometheusRecorder
	bus      *events.Bus
	pool     *task.Pool
	driver   *cycle.Driver
	dash     *dashboard.Dashboard
	view     *namespace.TreeView
	bar      *search.Bar

	outMu sync.Mutex
}

func newEngine(g *Global, cfg *config.Config) (*engine, error) {
	e := &engine{
		g:       g,
		reg:     registry.New(),
		promReg: prom.NewRegistry(),
		bus:     events.NewBus(),
		pool:    task.NewPool(0),
	}
	e.recorder = selfmetrics.NewPrometheusRecorder(e.promReg)
	registry.InstallOrShare(e.reg)
	seedDemo(e.reg)

	driverOpts := cfg.DriverOptions()
	driverOpts.Recorder = e.recorder
	driver, err := cycle.NewDriver(e.reg, driverOpts)
	if err != nil {
		return nil, err
	}
	e.driver = driver
	e.driver.OnEndOfCycle(runtimemetrics.New(e.reg).Observe)

	dashOpts := append(cfg.DashboardOptions(), dashboard.WithRecorder(e.recorder))
	if e.dash, err = dashboard.New("Dashboard", e.reg, dashOpts...); err != nil {
		return nil, err
	}

	viewOpts := cfg.ViewOptions()
	viewOpts.Recorder = e.recorder
	viewOpts.Bus = e.bus
	if e.view, err = namespace.NewTreeView("Namespaces", e.reg, e.pool, viewOpts); err != nil {
		return nil, err
	}

	barOpts := cfg.BarOptions()
	barOpts.Bus = e.bus
	if e.bar, err = search.NewBar(search.NewIndex(e.reg, nil, e.recorder), e.pool, barOpts); err != nil {
		return nil, err
	}
	return e, nil
}

// RunEngine runs synthetic producers and aggregation cycles until ctx is
// done, then prints a final dashboard summary.
func RunEngine(ctx context.Context, g *Global, cfg *config.Config, opts EngineOptions) error {
	e, err := newEngine(g, cfg)
	if err != nil {
		return err
	}
	defer e.bus.Close()
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.pool.StopAndWait(stopCtx); err != nil {
			slog.Warn("Background tasks did not stop", logfields.Error(err))
		}
	}()

	stopDash, err := e.dash.Subscribe(e.bus)
	if err != nil {
		return err
	}
	defer stopDash()

	if err := e.view.StartScheduler(); err != nil {
		return err
	}
	defer func() { _ = e.view.StopScheduler() }()

	e.driver.AddConsumer(e.dash)
	e.driver.AddConsumer(e.selector(ctx, opts))

	if opts.ConfigPath != "" {
		w, err := e.watchConfig(ctx, opts.ConfigPath)
		if err != nil {
			return err
		}
		defer w.Stop()
	}

	if opts.Report > 0 {
		s, err := e.startReporter(opts.Report)
		if err != nil {
			return err
		}
		defer func() { _ = s.Shutdown() }()
	}

	grp, gctx := errgroup.WithContext(ctx)
	for i := range max(opts.Producers, 1) {
		grp.Go(func() error {
			e.produce(gctx, uint64(i))
			return nil
		})
	}
	grp.Go(func() error { return e.driver.Run(gctx) })
	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	e.printSummary()
	if opts.SelfMetrics {
		return e.printSelfMetrics()
	}
	return nil
}

func (e *engine) produce(ctx context.Context, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			produceDemo(e.reg, rng)
		}
	}
}

// selector polls the tree view and the search bar every cycle and requests
// plots for metrics once they are visible.
func (e *engine) selector(ctx context.Context, opts EngineOptions) cycle.Consumer {
	pending := slices.Clone(opts.Plots)
	searching := opts.Search != ""
	if searching {
		e.bar.SetInput(opts.Search, time.Now())
	}
	return cycle.ConsumerFunc(func() {
		now := time.Now()
		if e.view.Poll(now) {
			pending = slices.DeleteFunc(pending, func(key registry.MetricKey) bool {
				_, err := e.view.Select(ctx, key)
				return err == nil
			})
		}
		if searching && e.bar.Poll(now) {
			if _, err := e.bar.Select(ctx, 0); err != nil {
				slog.Warn("No metric matches search", logfields.Query(opts.Search), logfields.Error(err))
			}
			searching = false
		}
	})
}

func (e *engine) watchConfig(ctx context.Context, path string) (*config.Watcher, error) {
	w, err := config.NewWatcher(path, 0, func(cfg *config.Config) {
		e.dash.SetPaused(cfg.Dashboard.Paused)
		if size := cfg.Dashboard.GlobalWindowSize; size != nil {
			e.dash.SetGlobalWindowSize(*size)
		} else {
			e.dash.SetGlobalWindowSize(0)
		}
		e.view.SetRefreshPeriod(cfg.Namespace.RefreshPeriod)
		if err := e.view.StartScheduler(); err != nil {
			slog.Warn("Failed to restart tree scheduler", logfields.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, err
	}
	return w, nil
}

func (e *engine) startReporter(every time.Duration) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(e.printSummary),
		gocron.WithName("dashboard-summary"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create summary job: %w", err)
	}
	s.Start()
	return s, nil
}

func (e *engine) printSummary() {
	e.outMu.Lock()
	defer e.outMu.Unlock()

	p := e.g.Printer
	out := e.g.Out
	plots := e.dash.Plots()
	_, _ = p.Fprintf(out, "cycle %d, %d metrics, %d plots\n", e.driver.Cycles(), e.reg.Len(), len(plots))
	for _, pl := range plots {
		switch pl.Kind() {
		case registry.KindHistogram:
			var total uint64
			for _, c := range pl.Counts() {
				total += c
			}
			_, _ = p.Fprintf(out, "  %-32s %d samples in %d buckets\n", pl.Title(), total, len(pl.Counts()))
		default:
			latest, ok := pl.Latest()
			if !ok {
				_, _ = p.Fprintf(out, "  %-32s no data\n", pl.Title())
				continue
			}
			unit := pl.Unit().Label()
			_, _ = p.Fprintf(out, "  %-32s %.2f %s\n", pl.Title(), latest, unit)
		}
	}
}

func (e *engine) printSelfMetrics() error {
	families, err := e.promReg.Gather()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to gather engine metrics").Build()
	}

	e.outMu.Lock()
	defer e.outMu.Unlock()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			_, _ = e.g.Printer.Fprintf(e.g.Out, "%s %.0f\n", mf.GetName(), value)
		}
	}
	return nil
}
