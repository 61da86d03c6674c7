// Package search defines the transient projections produced by one
// recommendation request. Nothing in this package is persisted.
package search

import "time"

// Result is a single ranked hit: a read-only projection of a record plus its
// similarity score. Scores are 1 - cosine_distance, clamped to [0,1].
type Result struct {
	id        string
	ref       string
	score     float64
	body      string
	meta      map[string]string
	createdAt time.Time
}

// NewResult creates a search result.
func NewResult(id, ref string, score float64, body string, meta map[string]string, createdAt time.Time) Result {
	return Result{id: id, ref: ref, score: score, body: body, meta: meta, createdAt: createdAt}
}

// ID returns the record identifier.
func (r *Result) ID() string { return r.id }

// Ref returns the record's display reference.
func (r *Result) Ref() string { return r.ref }

// Score returns the similarity score in [0,1].
func (r *Result) Score() float64 { return r.score }

// Body returns the record's normalized text.
func (r *Result) Body() string { return r.body }

// Meta returns the record's display metadata.
func (r *Result) Meta() map[string]string { return r.meta }

// CreatedAt returns the record's creation timestamp.
func (r *Result) CreatedAt() time.Time { return r.createdAt }
