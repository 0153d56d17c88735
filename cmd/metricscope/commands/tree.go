package commands

import (
	"git.home.luguber.info/inful/metricscope/internal/namespace"
	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// TreeCmd implements the 'tree' command.
type TreeCmd struct {
	Delimiter string `short:"d" help:"Namespace delimiter (defaults to the configured one)"`
}

func (t *TreeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	delim := cfg.Namespace.Delimiter
	if t.Delimiter != "" {
		delim = t.Delimiter
	}
	reg := registry.New()
	seedDemo(reg)
	return RunTree(g, reg, delim)
}

// RunTree prints the namespace tree of reg.
func RunTree(g *Global, reg *registry.Registry, delim string) error {
	entries := reg.ListAll()
	roots := namespace.Build(entries, delim)
	if err := namespace.Fprint(g.Out, roots); err != nil {
		return err
	}
	shown := namespace.Count(roots)
	_, _ = g.Printer.Fprintf(g.Out, "\n%d metrics shown, %d hidden with malformed paths\n", shown, len(entries)-shown)
	return nil
}
