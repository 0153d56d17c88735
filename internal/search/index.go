package search

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"git.home.luguber.info/inful/metricscope/internal/logfields"
	"git.home.luguber.info/inful/metricscope/internal/registry"
	"git.home.luguber.info/inful/metricscope/internal/selfmetrics"
)

// Result is one matching metric with its description.
type Result = registry.SearchResult

// Index searches one registry with an injected scorer.
type Index struct {
	reg      *registry.Registry
	scorer   Scorer
	recorder selfmetrics.Recorder
}

// NewIndex creates an index over reg. A nil scorer selects FuzzyScorer.
func NewIndex(reg *registry.Registry, scorer Scorer, recorder selfmetrics.Recorder) *Index {
	if scorer == nil {
		scorer = FuzzyScorer{}
	}
	return &Index{reg: reg, scorer: scorer, recorder: selfmetrics.OrNoop(recorder)}
}

// Search returns every metric whose name matches query, in no particular
// order. An empty query matches everything.
func (ix *Index) Search(query string) []Result {
	start := time.Now()
	results := ix.reg.FuzzySearch(query, ix.scorer)
	elapsed := time.Since(start)
	ix.recorder.ObserveSearch(elapsed, len(results))
	slog.Debug("Registry searched",
		logfields.Query(query),
		logfields.Results(len(results)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return results
}

// SortByName orders results by metric name, then labels and kind.
func SortByName(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int { return a.Key.Compare(b.Key) })
}

// SortByScore orders results best match first; ties are ordered by name.
func SortByScore(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Or(cmp.Compare(b.Score, a.Score), a.Key.Compare(b.Key))
	})
}
