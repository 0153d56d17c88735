// Package search finds registered metrics by name.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"git.home.luguber.info/inful/metricscope/internal/registry"
)

// Scorer scores a candidate metric name against a query; ok is false when
// the candidate does not match.
type Scorer = registry.Matcher

// FuzzyScorer matches when the query characters appear in order in the
// candidate. Consecutive runs, word starts and matches after separators
// score higher.
type FuzzyScorer struct{}

// Score implements Scorer.
func (FuzzyScorer) Score(query, candidate string) (int, bool) {
	matches := fuzzy.Find(query, []string{candidate})
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Score, true
}

// SubstringScorer matches candidates containing the query, ignoring case.
// Earlier occurrences and tighter matches score higher.
type SubstringScorer struct{}

// Score implements Scorer.
func (SubstringScorer) Score(query, candidate string) (int, bool) {
	idx := strings.Index(strings.ToLower(candidate), strings.ToLower(query))
	if idx < 0 {
		return 0, false
	}
	return len(query)*100 - idx*10 - (len(candidate) - len(query)), true
}
