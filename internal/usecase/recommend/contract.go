package recommend

import (
	"context"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/search"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs nearest-neighbor search over stored records. Only records
// with an embedding participate; an empty corpus yields an empty slice, not
// an error.
type Searcher interface {
	SearchKNN(ctx context.Context, corpusName string, vector []float32, limit int) ([]search.Result, error)
}

// Synthesizer produces recommendation commentary. Implementations degrade to
// static fallbacks internally and never fail the request.
type Synthesizer interface {
	Matches(ctx context.Context, c corpus.Corpus, query string, results []search.Result) string
	NoMatch(ctx context.Context, c corpus.Corpus, query string) string
}
