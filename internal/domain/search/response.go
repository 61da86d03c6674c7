package search

import (
	"math"
	"time"
)

const (
	// QueryDisplayLimit bounds the echoed query in a response.
	QueryDisplayLimit = 200
	// PreviewLimit bounds the body preview of each returned result.
	PreviewLimit = 200
)

// ResultView is the caller-facing shape of one ranked hit.
type ResultView struct {
	ID        string
	Ref       string
	Score     float64
	Preview   string
	Meta      map[string]string
	CreatedAt time.Time
}

// Response is the outcome of one recommendation request, constructed fresh
// per request.
type Response struct {
	Query      string
	Results    []ResultView
	Commentary string
}

// NewResponse assembles a response: the query truncated for display, each
// result reduced to a short preview with its score rounded to 4 decimals.
func NewResponse(query string, results []Result, commentary string) Response {
	views := make([]ResultView, len(results))
	for i := range results {
		r := &results[i]
		views[i] = ResultView{
			ID:        r.ID(),
			Ref:       r.Ref(),
			Score:     roundScore(r.Score()),
			Preview:   Truncate(r.Body(), PreviewLimit),
			Meta:      r.Meta(),
			CreatedAt: r.CreatedAt(),
		}
	}
	return Response{
		Query:      Truncate(query, QueryDisplayLimit),
		Results:    views,
		Commentary: commentary,
	}
}

// Truncate cuts s to at most limit characters, appending "..." when cut.
// Counts runes, not bytes: queries and bodies are frequently non-ASCII.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func roundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}
