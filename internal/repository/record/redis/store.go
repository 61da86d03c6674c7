// Package redis persists records in Redis 8+ hashes with FT.SEARCH
// nearest-neighbor search via rueidis.
package redis

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/candidhr/talentsearch/internal/domain"
	"github.com/candidhr/talentsearch/internal/domain/record"
	"github.com/candidhr/talentsearch/internal/domain/search"
)

const indexName = "talentsearch:records"

// knnOverfetch widens the KNN window past the requested limit. FT.SEARCH
// accepts a single SORTBY, so records tying exactly at the cutoff would
// otherwise enter or leave the window in unspecified order; the extra
// neighbors let rankAndTrim resolve the boundary deterministically.
const knnOverfetch = 16

// Config holds connection and index parameters for a Redis store.
type Config struct {
	Addrs           []string
	Username        string
	Password        string
	DB              int
	KeyPrefix       string
	Dimensions      int
	HNSWM           int
	HNSWEFConstruct int
}

// Store is a Redis-backed record store.
type Store struct {
	client     rueidis.Client
	prefix     string
	dimensions int
	hnswM      int
	hnswEF     int
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "talentsearch:record:"
	}
	hnswM := cfg.HNSWM
	if hnswM <= 0 {
		hnswM = 32
	}
	hnswEF := cfg.HNSWEFConstruct
	if hnswEF <= 0 {
		hnswEF = 400
	}

	return &Store{
		client:     client,
		prefix:     prefix,
		dimensions: cfg.Dimensions,
		hnswM:      hnswM,
		hnswEF:     hnswEF,
	}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// EnsureIndex creates the HNSW vector index over record hashes. An existing
// index is left untouched.
func (s *Store) EnsureIndex(ctx context.Context) error {
	args := []string{
		indexName, "ON", "HASH", "PREFIX", "1", s.prefix, "SCHEMA",
		"corpus", "TAG",
		"created_at", "NUMERIC", "SORTABLE",
		"vector", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(s.dimensions),
		"DISTANCE_METRIC", "COSINE",
		"M", strconv.Itoa(s.hnswM),
		"EF_CONSTRUCTION", strconv.Itoa(s.hnswEF),
	}

	cmd := s.client.B().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Insert persists one embedded record as a hash. Records without an embedding
// are rejected.
func (s *Store) Insert(ctx context.Context, rec *record.Record) error {
	if !rec.Searchable() {
		return domain.ErrNotEmbedded
	}
	if err := domain.ValidateDimensions(rec.Embedding(), s.dimensions); err != nil {
		return err
	}

	metaJSON, err := json.Marshal(rec.Meta())
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	cmd := s.client.B().Hset().Key(s.prefix+rec.ID()).FieldValue().
		FieldValue("corpus", rec.Corpus()).
		FieldValue("body", rec.Body()).
		FieldValue("meta", string(metaJSON)).
		FieldValue("created_at", strconv.FormatInt(rec.CreatedAt().UnixNano(), 10)).
		FieldValue("vector", vectorToBytes(rec.Embedding())).
		Build()

	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("hset record: %w", err)
	}
	return nil
}

// SearchKNN runs a KNN vector similarity search via FT.SEARCH, best first.
// An empty corpus yields an empty slice without error.
func (s *Store) SearchKNN(ctx context.Context, corpusName string, vector []float32, limit int) ([]search.Result, error) {
	if err := domain.ValidateDimensions(vector, s.dimensions); err != nil {
		return nil, err
	}

	k := limit + knnOverfetch
	queryStr := fmt.Sprintf("(@corpus:{%s})=>[KNN %d @vector $BLOB]", escapeTag(corpusName), k)

	args := []string{
		indexName, queryStr,
		"RETURN", "4", "body", "meta", "created_at", "__vector_score",
		"SORTBY", "__vector_score", "ASC",
		"LIMIT", "0", strconv.Itoa(k),
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	}

	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("ft.search: %w", err)
	}

	results, err := s.parseKNNResult(raw)
	if err != nil {
		return nil, err
	}
	return rankAndTrim(results, limit), nil
}

// rankAndTrim orders the over-fetched window by similarity descending with
// creation time as the tie-break, then cuts it back to limit. Membership at
// the cutoff is decided by recency, not index traversal order.
func rankAndTrim(results []search.Result, limit int) []search.Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score() != results[j].Score() {
			return results[i].Score() > results[j].Score()
		}
		return results[i].CreatedAt().After(results[j].CreatedAt())
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Count returns the number of embedded records in a corpus via FT.SEARCH with
// LIMIT 0 0.
func (s *Store) Count(ctx context.Context, corpusName string) (int, error) {
	queryStr := fmt.Sprintf("@corpus:{%s}", escapeTag(corpusName))
	cmd := s.client.B().Arbitrary("FT.SEARCH").Args(indexName, queryStr, "LIMIT", "0", "0").Build()
	raw, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return 0, fmt.Errorf("ft.search count: %w", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// parseKNNResult decodes the RESP2 FT.SEARCH reply.
// 2-stride: [total, key1, fields1, key2, fields2, ...]
func (s *Store) parseKNNResult(raw []rueidis.RedisMessage) ([]search.Result, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	results := make([]search.Result, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fieldMsgs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		fields := parseFieldPairs(fieldMsgs)

		score := 0.0
		if distStr, ok := fields["__vector_score"]; ok {
			if dist, err := strconv.ParseFloat(distStr, 64); err == nil {
				// cosine distance → similarity, clamped to [0,1]
				score = math.Max(0, math.Min(1, 1.0-dist))
			}
		}

		var meta map[string]string
		if raw := fields["meta"]; raw != "" {
			_ = json.Unmarshal([]byte(raw), &meta)
		}

		var createdAt time.Time
		if nanos, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}

		id := strings.TrimPrefix(key, s.prefix)
		results = append(results, search.NewResult(
			id, meta[record.MetaRef], score, fields["body"], meta, createdAt,
		))
	}

	return results, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// vectorToBytes encodes a float32 vector as a little-endian binary blob.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	` `, `\ `,
	`-`, `\-`,
)

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}

// isRedisErr checks if err is a Redis server error containing substr
// (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
