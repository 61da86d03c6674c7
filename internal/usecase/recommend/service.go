// Package recommend implements the end-to-end search workflow:
// validate, embed, nearest-neighbor search, relevance gate, synthesis.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/search"
	"github.com/candidhr/talentsearch/internal/usecase/synthesis"
)

// Result-limit bounds. Caller-supplied limits are clamped, never rejected.
const (
	MinLimit = 1
	MaxLimit = 20
)

// Service is the recommendation orchestrator for one corpus. Stateless across
// requests; safe for concurrent use.
type Service struct {
	corpus corpus.Corpus
	embed  Embedder
	repo   Searcher
	synth  Synthesizer
	logger *zap.Logger
}

// New creates a recommendation service.
func New(c corpus.Corpus, embed Embedder, repo Searcher, synth Synthesizer, logger *zap.Logger) *Service {
	return &Service{corpus: c, embed: embed, repo: repo, synth: synth, logger: logger}
}

// Recommend runs the full pipeline for one query. The steps are strictly
// sequential; the only exits besides the final response are the empty-corpus
// and gate-rejected short-circuits.
func (s *Service) Recommend(ctx context.Context, query string, limit int) (search.Response, error) {
	if strings.TrimSpace(query) == "" {
		return search.Response{}, domain.ErrInvalidQuery
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		return search.Response{}, fmt.Errorf("embed query: %v: %w", err, domain.ErrRetrievalUnavailable)
	}

	results, err := s.repo.SearchKNN(ctx, s.corpus.Name(), embResult.Embedding, clampLimit(limit))
	if err != nil {
		return search.Response{}, fmt.Errorf("search knn: %w", err)
	}

	if len(results) == 0 {
		s.logger.Info("empty corpus, skipping synthesis", zap.String("corpus", s.corpus.Name()))
		return search.NewResponse(query, nil, synthesis.NoData(s.corpus)), nil
	}

	orderResults(results)

	if !Accepts(results) {
		s.logger.Info("all candidates below relevance threshold",
			zap.String("corpus", s.corpus.Name()),
			zap.Float64("top_score", results[0].Score()),
		)
		return search.NewResponse(query, nil, s.synth.NoMatch(ctx, s.corpus, query)), nil
	}

	commentary := s.synth.Matches(ctx, s.corpus, query, results)

	s.logger.Info("recommendation produced",
		zap.String("corpus", s.corpus.Name()),
		zap.Int("results", len(results)),
		zap.Float64("top_score", results[0].Score()),
	)

	return search.NewResponse(query, results, commentary), nil
}

// orderResults enforces the deterministic ordering contract regardless of
// backend: score descending, ties broken by most recent creation first.
func orderResults(results []search.Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score() != results[j].Score() {
			return results[i].Score() > results[j].Score()
		}
		return results[i].CreatedAt().After(results[j].CreatedAt())
	})
}

func clampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
