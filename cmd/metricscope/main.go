package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/metricscope/cmd/metricscope/commands"
	ferrors "git.home.luguber.info/inful/metricscope/internal/foundation/errors"
	"git.home.luguber.info/inful/metricscope/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("metricscope"),
		kong.Description("Aggregate runtime metrics into dashboards, namespace trees and searches."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(commands.NewGlobal(os.Stdout), &cli)
	adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	os.Exit(adapter.Report(os.Stderr, err))
}
