package ingest

import (
	"context"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/domain/record"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// RecordStore persists embedded records.
type RecordStore interface {
	Insert(ctx context.Context, rec *record.Record) error
}
