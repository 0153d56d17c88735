package registry

// Matcher scores a candidate metric name against a query. ok is false when
// the candidate does not match at all.
type Matcher interface {
	Score(query, candidate string) (score int, ok bool)
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(query, candidate string) (int, bool)

// Score implements Matcher.
func (f MatcherFunc) Score(query, candidate string) (int, bool) { return f(query, candidate) }

// SearchResult is one registered metric matching a search.
type SearchResult struct {
	Key         MetricKey
	Description *Description
	Score       int
}

// Unit returns the described unit, or UnitNone.
func (s SearchResult) Unit() Unit {
	if s.Description == nil {
		return UnitNone
	}
	return s.Description.Unit
}

// FuzzySearch returns the registered metrics whose name matches query
// according to m. An empty query matches everything. The order of results is
// unspecified; callers sort before display.
func (r *Registry) FuzzySearch(query string, m Matcher) []SearchResult {
	var results []SearchResult
	for _, e := range r.ListAll() {
		score := 0
		if query != "" {
			var ok bool
			if score, ok = m.Score(query, e.Name()); !ok {
				continue
			}
		}
		results = append(results, SearchResult{Key: e.Key, Description: e.Description, Score: score})
	}
	return results
}
