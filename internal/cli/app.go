// Package cli implements the resolvd commands and the wiring that
// turns configuration into a running dependency graph.
package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/resolvd-ai/resolvd/internal/config"
	"github.com/resolvd-ai/resolvd/internal/database"
	"github.com/resolvd-ai/resolvd/internal/domain"
	"github.com/resolvd-ai/resolvd/internal/embedding"
	"github.com/resolvd-ai/resolvd/internal/index"
	"github.com/resolvd-ai/resolvd/internal/ingest"
	"github.com/resolvd-ai/resolvd/internal/metadata"
	"github.com/resolvd-ai/resolvd/internal/resolver"
	"github.com/resolvd-ai/resolvd/internal/retry"
	"github.com/resolvd-ai/resolvd/internal/storage"
)

// App holds the wired dependency graph shared by the serve, ingest and
// resolve commands.
type App struct {
	Config   *config.Config
	Pool     *pgxpool.Pool
	Index    *index.KnowledgeIndex
	Embedder embedding.Client
	Resolver *resolver.Resolver
	Pipeline *ingest.Pipeline
}

// BuildApp wires the index, embedder, metadata resolver, resolution
// service and ingestion pipeline from config. Absent optional settings
// select degraded local equivalents: an in-memory index without
// DATABASE_URL, a deterministic local embedder without OPENAI_API_KEY
// and an unresolved metadata source without METADATA_CSV.
func BuildApp(ctx context.Context, cfg *config.Config) (*App, error) {
	overrides, err := cfg.ParsePartitionOverrides()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg}

	var store index.VectorStore
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.Pool = pool
		store = index.NewPostgresStore(pool)
		log.Println("knowledge index: pgvector store")
	} else {
		store = index.NewMemoryStore()
		log.Println("knowledge index: in-memory store (DATABASE_URL not set)")
	}
	app.Index = index.NewKnowledgeIndex(store, overrides)

	if cfg.HasOpenAI() {
		app.Embedder = embedding.NewOpenAIClientWithConfig(embedding.OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Dimensions: cfg.EmbeddingDimensions,
		})
	} else {
		app.Embedder = embedding.NewHashClient(cfg.EmbeddingDimensions)
		log.Println("embedder: deterministic local hasher (OPENAI_API_KEY not set)")
	}

	meta, err := buildMetadataResolver(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	policy := retry.Policy{
		MaxAttempts:     cfg.RetryMaxAttempts,
		InitialInterval: cfg.RetryInitialDelay,
		MaxInterval:     cfg.RetryMaxDelay,
	}

	opts := resolver.Options{
		HighThreshold:    cfg.HighThreshold,
		MediumThreshold:  cfg.MediumThreshold,
		TopK:             cfg.TopK,
		DefaultStatusKey: domain.StatusKey(cfg.DefaultStatusKey),
		SentinelResponse: cfg.SentinelResponse,
		CallTimeout:      cfg.CallTimeout,
	}

	app.Resolver, err = resolver.NewResolverWithPolicy(meta, app.Embedder, app.Index, opts, policy)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to build resolver: %w", err)
	}

	app.Pipeline = ingest.NewPipelineWithPolicy(app.Index, app.Embedder, policy, cfg.CallTimeout)

	return app, nil
}

// Close releases pooled resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// KnowledgeSource picks the configured ingestion source: the S3
// snapshot bucket when S3 credentials are present, otherwise the local
// knowledge directory.
func (a *App) KnowledgeSource(ctx context.Context) (ingest.Source, error) {
	cfg := a.Config
	if cfg.HasS3() {
		client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		return storage.NewSnapshotSource(client, cfg.S3Prefix), nil
	}
	if cfg.KnowledgeDir != "" {
		return ingest.NewCSVDirSource(cfg.KnowledgeDir), nil
	}
	return nil, fmt.Errorf("no knowledge source configured: set KNOWLEDGE_DIR or S3 credentials")
}

func buildMetadataResolver(cfg *config.Config) (resolver.MetadataResolver, error) {
	if cfg.MetadataCSVPath == "" {
		log.Println("metadata: no source configured, all tickets resolve to the default status key")
		return metadata.NopResolver{}, nil
	}

	values, err := cfg.ParseStatusKeyMap()
	if err != nil {
		return nil, err
	}
	mapping, err := metadata.NewMapping(cfg.MetadataStatusField, values)
	if err != nil {
		return nil, fmt.Errorf("invalid status-key mapping: %w", err)
	}
	source, err := metadata.NewCSVSource(cfg.MetadataCSVPath, cfg.MetadataIDColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata CSV: %w", err)
	}
	log.Printf("metadata: loaded %d ticket records from %s", source.Len(), cfg.MetadataCSVPath)
	return metadata.NewResolver(source, mapping), nil
}
