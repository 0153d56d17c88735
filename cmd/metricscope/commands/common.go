package commands

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"git.home.luguber.info/inful/metricscope/internal/config"
	"git.home.luguber.info/inful/metricscope/internal/logfields"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger  *slog.Logger
	Out     io.Writer
	Printer *message.Printer
}

// NewGlobal returns the shared state writing command output to out.
func NewGlobal(out io.Writer) *Global {
	return &Global{
		Logger:  slog.Default(),
		Out:     out,
		Printer: message.NewPrinter(language.English),
	}
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"metricscope.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run    RunCmd    `cmd:"" help:"Run synthetic producers through the aggregation cycle and print a dashboard summary"`
	Tree   TreeCmd   `cmd:"" help:"Print the namespace tree of the demo metrics"`
	Search SearchCmd `cmd:"" help:"Search the demo metrics by name"`
	Init   InitCmd   `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// LoadConfig loads the configuration file. A missing file yields the
// defaults so the demo commands work without one.
func (c *CLI) LoadConfig() (*config.Config, error) {
	if _, err := os.Stat(c.Config); errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No configuration file, using defaults", logfields.Path(c.Config))
		return config.Default(), nil
	}
	return config.Load(c.Config)
}
