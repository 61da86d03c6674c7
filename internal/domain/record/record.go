// Package record defines the stored entity of the retrieval engine.
package record

import (
	"fmt"
	"time"
)

// Record is a stored entity (candidate profile or job posting), immutable
// after creation. A record is searchable iff its embedding is present and
// non-empty; records without an embedding exist only outside this pipeline.
type Record struct {
	id        string
	corpus    string
	body      string
	embedding []float32
	createdAt time.Time
	meta      map[string]string
}

// New validates and creates a Record.
func New(id, corpus, body string, embedding []float32, createdAt time.Time, meta map[string]string) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("record ID is required")
	}
	if corpus == "" {
		return Record{}, fmt.Errorf("corpus is required")
	}
	if body == "" {
		return Record{}, fmt.Errorf("body is required")
	}
	return Record{
		id:        id,
		corpus:    corpus,
		body:      body,
		embedding: embedding,
		createdAt: createdAt,
		meta:      cloneMeta(meta),
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id, corpus, body string, embedding []float32, createdAt time.Time, meta map[string]string) Record {
	return Record{id: id, corpus: corpus, body: body, embedding: embedding, createdAt: createdAt, meta: meta}
}

// ID returns the record identifier.
func (r *Record) ID() string { return r.id }

// Corpus returns the corpus this record belongs to.
func (r *Record) Corpus() string { return r.corpus }

// Body returns the normalized text the embedding was generated from.
func (r *Record) Body() string { return r.body }

// Embedding returns the dense vector, nil when the record is not embedded.
func (r *Record) Embedding() []float32 { return r.embedding }

// CreatedAt returns the creation timestamp.
func (r *Record) CreatedAt() time.Time { return r.createdAt }

// Meta returns display metadata (filename, position, company, ...).
func (r *Record) Meta() map[string]string { return r.meta }

// Searchable reports whether the record participates in retrieval.
func (r *Record) Searchable() bool { return len(r.embedding) > 0 }

func cloneMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
