// Package synthesis turns ranked search results into natural-language
// commentary, degrading to static fallbacks when the generation provider is
// unavailable.
package synthesis

import (
	"context"

	"go.uber.org/zap"

	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/search"
	"github.com/candidhr/talentsearch/internal/metrics"
)

const (
	// MaxPromptResults caps how many results feed the match prompt.
	MaxPromptResults = 5
	// PromptPreviewChars bounds each result's body inside the prompt.
	PromptPreviewChars = 500
)

// Service produces recommendation commentary.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a synthesis service.
func New(gen Generator, logger *zap.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

// Matches explains why the top results match the query and which to
// prioritize, in the query's language. Generator failures degrade to a static
// fallback message: missing commentary must never fail a successful search.
func (s *Service) Matches(ctx context.Context, c corpus.Corpus, query string, results []search.Result) string {
	p := profiles[c.Name()]

	text, err := s.gen.Generate(ctx, p.matchSystem, buildMatchPrompt(c, query, results))
	if err != nil {
		s.logger.Warn("match synthesis degraded to fallback",
			zap.String("corpus", c.Name()), zap.Error(err))
		metrics.SynthesisFallbacksTotal.WithLabelValues(c.Name(), "match").Inc()
		return p.fallbackMatch
	}
	return text
}

// NoMatch produces an apology with query-refinement suggestions when the
// relevance gate rejected every candidate. Same degradation policy as Matches.
func (s *Service) NoMatch(ctx context.Context, c corpus.Corpus, query string) string {
	p := profiles[c.Name()]

	text, err := s.gen.Generate(ctx, p.noMatchSystem, buildNoMatchPrompt(query))
	if err != nil {
		s.logger.Warn("no-match synthesis degraded to fallback",
			zap.String("corpus", c.Name()), zap.Error(err))
		metrics.SynthesisFallbacksTotal.WithLabelValues(c.Name(), "no_match").Inc()
		return p.fallbackNone
	}
	return text
}

// NoData returns the static message for a corpus with zero embedded records.
// The generator is never involved here.
func NoData(c corpus.Corpus) string {
	return profiles[c.Name()].noData
}
