package recommend

import "github.com/candidhr/talentsearch/internal/domain/search"

// RelevanceThreshold is the cosine-similarity floor separating topical
// relevance from coincidental vector proximity. Top-k search always returns
// something; below this floor the candidates are noise, not matches.
const RelevanceThreshold = 0.30

// Accepts reports whether a ranked result set contains at least one genuine
// match: the maximum similarity score reaches the threshold.
func Accepts(results []search.Result) bool {
	for i := range results {
		if results[i].Score() >= RelevanceThreshold {
			return true
		}
	}
	return false
}
