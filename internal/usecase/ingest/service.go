// Package ingest embeds and durably stores new records with per-item failure
// isolation: one item's failure never aborts or rolls back another's success.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/domain/batch"
	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/record"
)

// Service is the ingestion pipeline for one corpus.
type Service struct {
	corpus     corpus.Corpus
	embed      Embedder
	store      RecordStore
	dimensions int
	logger     *zap.Logger
}

// New creates an ingestion service. dimensions is the deployment's fixed
// embedding length; 0 disables the check.
func New(c corpus.Corpus, embed Embedder, store RecordStore, dimensions int, logger *zap.Logger) *Service {
	return &Service{corpus: c, embed: embed, store: store, dimensions: dimensions, logger: logger}
}

// Ingest processes a batch of sources. Embedding is mandatory per item: a
// record whose embedding fails is not persisted at all, only recorded in the
// failure list, and the batch continues. When every item of a non-empty batch
// fails, the returned error is a *batch.AllFailedError carrying all per-item
// reasons; a mixed batch succeeds with a partial outcome.
func (s *Service) Ingest(ctx context.Context, sources []record.Source) (batch.Outcome, error) {
	var (
		stored   int
		failures []batch.ItemFailure
	)

	for i := range sources {
		src := &sources[i]
		if err := s.ingestOne(ctx, src); err != nil {
			s.logger.Warn("item failed to ingest",
				zap.String("corpus", s.corpus.Name()),
				zap.String("ref", src.Ref),
				zap.Error(err),
			)
			failures = append(failures, batch.NewItemFailure(src.Ref, err.Error()))
			continue
		}
		stored++
	}

	outcome := batch.NewOutcome(len(sources), stored, failures)

	if outcome.AllFailed() {
		return outcome, &batch.AllFailedError{Outcome: outcome}
	}

	if len(failures) > 0 {
		s.logger.Warn("batch partially ingested",
			zap.String("corpus", s.corpus.Name()),
			zap.Int("stored", stored),
			zap.Int("failed", len(failures)),
		)
	}

	return outcome, nil
}

// ingestOne normalizes, embeds, and persists a single source. A record is
// never written without an embedding: a half-ingested row would be invisible
// to retrieval yet present in listings.
func (s *Service) ingestOne(ctx context.Context, src *record.Source) error {
	normalized := s.corpus.Normalize(src.Fields)
	if normalized == "" {
		return fmt.Errorf("no matchable fields to embed")
	}

	embResult, err := s.embed.Embed(ctx, normalized)
	if err != nil {
		return fmt.Errorf("failed to generate embedding: %w", err)
	}
	if err := domain.ValidateDimensions(embResult.Embedding, s.dimensions); err != nil {
		return fmt.Errorf("embedding rejected: %w", err)
	}

	meta := src.Meta
	if src.Ref != "" {
		meta = make(map[string]string, len(src.Meta)+1)
		for k, v := range src.Meta {
			meta[k] = v
		}
		meta[record.MetaRef] = src.Ref
	}

	rec, err := record.New(
		uuid.NewString(), s.corpus.Name(), normalized,
		embResult.Embedding, time.Now().UTC(), meta,
	)
	if err != nil {
		return err
	}

	if err := s.store.Insert(ctx, &rec); err != nil {
		return fmt.Errorf("failed to persist: %v: %w", err, domain.ErrPersistenceFailure)
	}

	s.logger.Info("record ingested",
		zap.String("corpus", s.corpus.Name()),
		zap.String("id", rec.ID()),
		zap.String("ref", src.Ref),
	)
	return nil
}
