// Command talentsearch wires the retrieval engine together and exposes it as
// a small CLI caller: ingest record batches from JSON, or run one
// recommendation query.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/candidhr/talentsearch/internal/config"
	"github.com/candidhr/talentsearch/internal/domain/corpus"
	"github.com/candidhr/talentsearch/internal/domain/record"
	"github.com/candidhr/talentsearch/internal/domain/search"
	logpkg "github.com/candidhr/talentsearch/internal/logger"
	"github.com/candidhr/talentsearch/internal/metrics"
	pgstore "github.com/candidhr/talentsearch/internal/repository/record/postgres"
	redisstore "github.com/candidhr/talentsearch/internal/repository/record/redis"
	openaiProv "github.com/candidhr/talentsearch/internal/transport/openai"
	ingestuc "github.com/candidhr/talentsearch/internal/usecase/ingest"
	recommenduc "github.com/candidhr/talentsearch/internal/usecase/recommend"
	synthesisuc "github.com/candidhr/talentsearch/internal/usecase/synthesis"
	"github.com/candidhr/talentsearch/internal/version"
)

// recordStore is the union of the store capabilities the engine needs.
type recordStore interface {
	Insert(ctx context.Context, rec *record.Record) error
	SearchKNN(ctx context.Context, corpusName string, vector []float32, limit int) ([]search.Result, error)
	Count(ctx context.Context, corpusName string) (int, error)
	Close()
}

// sourceFile is the JSON shape of one ingestion batch.
type sourceFile []struct {
	Ref    string            `json:"ref"`
	Fields map[string]string `json:"fields"`
	Meta   map[string]string `json:"meta"`
}

func main() {
	var (
		corpusName = flag.String("corpus", "candidates", "corpus to operate on: candidates or jobs")
		query      = flag.String("query", "", "free-text query to recommend against")
		limit      = flag.Int("limit", 5, "maximum number of results")
		ingestPath = flag.String("ingest", "", "path to a JSON batch of records to ingest")
		initStore  = flag.Bool("init", false, "create the storage schema/index and exit")
		countOnly  = flag.Bool("count", false, "print the number of embedded records in the corpus and exit")
	)
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting talentsearch",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	ctx := context.Background()

	store := openStore(ctx, cfg, logger)
	defer store.Close()

	if *initStore {
		initStorage(ctx, store, logger)
		return
	}

	c, ok := corpusByName(*corpusName)
	if !ok {
		logger.Fatal("unknown corpus", zap.String("corpus", *corpusName))
	}

	if *countOnly {
		runCount(ctx, store, c, logger)
		return
	}

	metrics.RegisterProviderMetrics()

	embedder := openaiProv.NewEmbedder(&openaiProv.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	generator := openaiProv.NewGenerator(&openaiProv.GeneratorConfig{
		APIKey:      cfg.Chat.APIKey,
		BaseURL:     cfg.Chat.BaseURL,
		Model:       cfg.Chat.Model,
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
		Provider:    cfg.Chat.Provider,
		Logger:      logger,
	})

	if err := embedder.HealthCheck(ctx); err != nil {
		logger.Fatal("embedding provider unreachable", zap.Error(err))
	}

	synth := synthesisuc.New(generator, logger)

	switch {
	case *ingestPath != "":
		svc := ingestuc.New(c, embedder, store, cfg.Embedding.Dimensions, logger)
		runIngest(ctx, svc, *ingestPath, logger)
	case *query != "":
		svc := recommenduc.New(c, embedder, store, synth, logger)
		runRecommend(ctx, svc, *query, *limit, logger)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) recordStore {
	switch cfg.Database.Driver {
	case "postgres":
		store, err := pgstore.NewStore(ctx, cfg.Database.DSN, cfg.Embedding.Dimensions)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		return store
	case "redis":
		store, err := redisstore.NewStore(redisstore.Config{
			Addrs:           cfg.Database.Addrs,
			Password:        cfg.Database.Password,
			KeyPrefix:       cfg.Database.KeyPrefix,
			Dimensions:      cfg.Embedding.Dimensions,
			HNSWM:           cfg.Database.HNSWM,
			HNSWEFConstruct: cfg.Database.HNSWEFConstruct,
		})
		if err != nil {
			logger.Fatal("failed to create redis store", zap.Error(err))
		}
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			logger.Fatal("redis not ready", zap.Error(err))
		}
		return store
	default:
		logger.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
		return nil
	}
}

func initStorage(ctx context.Context, store recordStore, logger *zap.Logger) {
	type initer interface{ Init(ctx context.Context) error }
	type indexer interface{ EnsureIndex(ctx context.Context) error }

	switch s := store.(type) {
	case initer:
		if err := s.Init(ctx); err != nil {
			logger.Fatal("failed to init schema", zap.Error(err))
		}
	case indexer:
		if err := s.EnsureIndex(ctx); err != nil {
			logger.Fatal("failed to create index", zap.Error(err))
		}
	}
	logger.Info("storage initialized")
}

func corpusByName(name string) (corpus.Corpus, bool) {
	switch name {
	case corpus.Candidates.Name():
		return corpus.Candidates, true
	case corpus.Jobs.Name():
		return corpus.Jobs, true
	default:
		return corpus.Corpus{}, false
	}
}

func runCount(ctx context.Context, store recordStore, c corpus.Corpus, logger *zap.Logger) {
	n, err := store.Count(ctx, c.Name())
	if err != nil {
		logger.Fatal("failed to count records", zap.Error(err))
	}
	fmt.Printf("%s: %d records\n", c.Name(), n)
}

func runIngest(ctx context.Context, svc *ingestuc.Service, path string, logger *zap.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("failed to read batch file", zap.Error(err))
	}

	var batchFile sourceFile
	if err := json.Unmarshal(data, &batchFile); err != nil {
		logger.Fatal("failed to parse batch file", zap.Error(err))
	}

	sources := make([]record.Source, len(batchFile))
	for i, item := range batchFile {
		sources[i] = record.Source{Ref: item.Ref, Fields: item.Fields, Meta: item.Meta}
	}

	outcome, err := svc.Ingest(ctx, sources)
	if err != nil {
		logger.Error("ingestion failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("submitted=%d stored=%d failed=%d\n",
		outcome.Submitted(), outcome.Stored(), len(outcome.Failures()))
	for _, f := range outcome.Failures() {
		fmt.Printf("  failed %s: %s\n", f.Ref(), f.Reason())
	}
}

func runRecommend(ctx context.Context, svc *recommenduc.Service, query string, limit int, logger *zap.Logger) {
	resp, err := svc.Recommend(ctx, query, limit)
	if err != nil {
		logger.Error("recommendation failed", zap.Error(err))
		os.Exit(1)
	}

	type resultOut struct {
		ID        string            `json:"id"`
		Ref       string            `json:"ref,omitempty"`
		Score     float64           `json:"similarity_score"`
		Preview   string            `json:"text_preview"`
		Meta      map[string]string `json:"meta,omitempty"`
		CreatedAt time.Time         `json:"created_at"`
	}

	results := make([]resultOut, len(resp.Results))
	for i, r := range resp.Results {
		results[i] = resultOut{r.ID, r.Ref, r.Score, r.Preview, r.Meta, r.CreatedAt}
	}

	out := struct {
		Query      string      `json:"query"`
		Results    []resultOut `json:"results"`
		Commentary string      `json:"ai_recommendation"`
	}{resp.Query, results, resp.Commentary}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Fatal("failed to encode response", zap.Error(err))
	}
}
