package commands

import (
	"git.home.luguber.info/inful/metricscope/internal/namespace"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/search"
)

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query   string `arg:"" optional:"" help:"Text to search for; empty lists every metric"`
	Scorer  string `help:"Matching strategy" enum:"fuzzy,substring" default:"fuzzy"`
	ByScore bool   `name:"by-score" help:"Order by match score instead of name"`
}

func (s *SearchCmd) Run(g *Global, _ *CLI) error {
	reg := registry.New()
	seedDemo(reg)
	return RunSearch(g, reg, s.Query, ScorerByName(s.Scorer), s.ByScore)
}

// ScorerByName returns the scorer selected by the --scorer flag.
func ScorerByName(name string) search.Scorer {
	if name == "substring" {
		return search.SubstringScorer{}
	}
	return search.FuzzyScorer{}
}

// RunSearch prints the metrics of reg matching query, one per line.
func RunSearch(g *Global, reg *registry.Registry, query string, scorer search.Scorer, byScore bool) error {
	results := search.NewIndex(reg, scorer, nil).Search(query)
	if byScore {
		search.SortByScore(results)
	} else {
		search.SortByName(results)
	}
	for _, r := range results {
		line := namespace.MetricText(r.Key.Name(), registry.Entry{Key: r.Key, Description: r.Description})
		if query != "" {
			_, _ = g.Printer.Fprintf(g.Out, "%6d  %s\n", r.Score, line)
			continue
		}
		_, _ = g.Printer.Fprintf(g.Out, "%s\n", line)
	}
	_, _ = g.Printer.Fprintf(g.Out, "%d results\n", len(results))
	return nil
}
