package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or whitespace-only search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrEmbeddingFailure signals an embedding provider failure.
	ErrEmbeddingFailure = errors.New("embedding failure")
	// ErrRetrievalUnavailable signals that no recommendation can be produced
	// because the query could not be embedded.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrSynthesisFailure signals a generation provider failure.
	ErrSynthesisFailure = errors.New("synthesis failure")
	// ErrPersistenceFailure signals a record store failure.
	ErrPersistenceFailure = errors.New("persistence failure")
	// ErrDimensionMismatch signals an embedding dimension mismatch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNotEmbedded signals an attempt to persist a record without an embedding.
	ErrNotEmbedded = errors.New("record has no embedding")
)
