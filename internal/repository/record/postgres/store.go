// Package postgres persists records in PostgreSQL with pgvector
// nearest-neighbor search.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/domain/record"
	"github.com/candidhr/talentsearch/internal/domain/search"
)

// Store is a pgvector-backed record store. Records are immutable after
// creation, so concurrent readers and writers need no extra locking here.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewStore connects to PostgreSQL and verifies connectivity.
func NewStore(ctx context.Context, dsn string, dimensions int) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, dimensions: dimensions}, nil
}

// Init creates the vector extension, the records table, and its indexes.
func (s *Store) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS records (
		id UUID PRIMARY KEY,
		corpus TEXT NOT NULL,
		body TEXT NOT NULL,
		meta JSONB,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_corpus ON records(corpus);

	CREATE INDEX IF NOT EXISTS idx_records_embedding ON records
	USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
	`, s.dimensions)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Insert persists one embedded record. Records without an embedding are
// rejected: this pipeline never writes a row with a null embedding.
func (s *Store) Insert(ctx context.Context, rec *record.Record) error {
	if !rec.Searchable() {
		return domain.ErrNotEmbedded
	}
	if err := domain.ValidateDimensions(rec.Embedding(), s.dimensions); err != nil {
		return err
	}

	query := `
	INSERT INTO records (id, corpus, body, meta, embedding, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.pool.Exec(ctx, query,
		rec.ID(), rec.Corpus(), rec.Body(), rec.Meta(),
		pgvector.NewVector(rec.Embedding()), rec.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// SearchKNN returns the records nearest to the query vector by cosine
// similarity, best first, ties broken by most recent creation. An empty
// corpus yields an empty slice without error.
func (s *Store) SearchKNN(ctx context.Context, corpusName string, vector []float32, limit int) ([]search.Result, error) {
	if err := domain.ValidateDimensions(vector, s.dimensions); err != nil {
		return nil, err
	}

	query := `
	SELECT id, body, meta, created_at,
	       1 - (embedding <=> $1) AS similarity
	FROM records
	WHERE corpus = $2 AND embedding IS NOT NULL
	ORDER BY embedding <=> $1, created_at DESC
	LIMIT $3
	`
	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(vector), corpusName, limit)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	defer rows.Close()

	var results []search.Result
	for rows.Next() {
		var (
			id        string
			body      string
			meta      map[string]string
			createdAt time.Time
			score     float64
		)
		if err := rows.Scan(&id, &body, &meta, &createdAt, &score); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, search.NewResult(
			id, meta[record.MetaRef], clampScore(score), body, meta, createdAt,
		))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// Count returns the number of embedded records in a corpus.
func (s *Store) Count(ctx context.Context, corpusName string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM records WHERE corpus = $1 AND embedding IS NOT NULL`,
		corpusName,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// clampScore bounds 1 - cosine_distance to [0,1]. Distances above 1 happen
// for near-opposite vectors and would otherwise go negative.
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
