// Package centralign provides a library for prompt-driven form generation
// with context-aware retrieval over a user's form history.
//
// CentrAlign persists generated form definitions per owner, embeds their
// summaries, and retrieves the most relevant prior forms as context for new
// generations. Retrieval ranks by cosine similarity and falls back to the
// owner's most recent forms when the vector path is unavailable.
//
// Basic usage:
//
//	client, err := centralign.New(
//	    centralign.WithSQLite(".centralign/data.db"),
//	    centralign.WithJWTSecret(os.Getenv("AUTH_JWT_SECRET")),
//	    centralign.WithOpenAI(os.Getenv("OPENAI_API_KEY")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Generate a form from a prompt
//	f, err := client.Generator.Generate(ctx, ownerID, "an event registration form")
//
//	// Retrieve prior forms as context for a new prompt
//	result := client.Retrieval.Retrieve(ctx, ownerID, "conference signup", 5)
//	for _, match := range result.Matches() {
//	    fmt.Println(match.Form().Summary(), match.Similarity())
//	}
package centralign

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/codeBunny2022/CentrAlignWebapp/application/service"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/retrieval"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/persistence"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/provider"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/database"
)

// Client is the main entry point for the centralign library.
// The background worker starts automatically on creation.
//
// Access resources via struct fields:
//
//	client.Generator.Generate(ctx, ownerID, prompt)
//	client.Retrieval.Retrieve(ctx, ownerID, query, 5)
//	client.Forms.List(ctx, ownerID, service.FormListParams{})
type Client struct {
	// Public resource fields (direct service access)
	Auth      *service.Auth
	Forms     *service.Forms
	Generator *service.Generator
	Retrieval *service.Retrieval
	Tasks     *service.Queue

	db         database.Database
	formStore  persistence.FormStore
	embeddings retrieval.EmbeddingStore
	indexer    *service.Indexer

	queue    *service.Queue
	worker   *service.Worker
	registry *service.Registry

	closers []io.Closer

	logger  *slog.Logger
	dataDir string
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a new Client with the given options.
// The background worker is started automatically unless WithoutWorker is set.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.database == databaseUnset {
		return nil, ErrNoDatabase
	}

	// Set up logger
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	// The hash embedder is the zero-config default, so retrieval works
	// before any external embedding provider is configured.
	embeddingProvider := cfg.embeddingProvider
	dimension := cfg.embeddingDimension
	if embeddingProvider == nil {
		hash := provider.NewHashEmbedder(cfg.embeddingDimension)
		embeddingProvider = hash
		dimension = hash.Dimension()
		logger.Info("deterministic hash embedder enabled", slog.Int("dimension", dimension))
	}

	// Build database URL
	ctx := context.Background()
	dbURL, err := buildDatabaseURL(cfg)
	if err != nil {
		return nil, fmt.Errorf("build database url: %w", err)
	}

	// Open database
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Ensure the vector extension exists on PostgreSQL
	if err := persistence.PreMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("pre migrate: %w", err), errClose)
	}

	// Run auto migration
	if err := persistence.AutoMigrate(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	// Validate schema matches GORM models
	if err := persistence.ValidateSchema(db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), errClose)
	}

	// Probe the embedding dimension once (only needed for PostgreSQL, which
	// declares VECTOR(N) columns up front; SQLite stores vectors as JSON and
	// accepts whatever width arrives).
	if cfg.database == databasePostgres {
		resp, err := embeddingProvider.Embed(ctx, provider.NewEmbeddingRequest([]string{"dimension probe"}))
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("probe embedding dimension: %w", err), errClose)
		}
		probeEmbeddings := resp.Embeddings()
		if len(probeEmbeddings) == 0 || len(probeEmbeddings[0]) == 0 {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("failed to obtain embedding dimension from provider"), errClose)
		}
		dimension = len(probeEmbeddings[0])
	}

	embedder := &embeddingAdapter{inner: embeddingProvider, dimension: dimension}

	// Create stores
	formStore := persistence.NewFormStore(db)
	userStore := persistence.NewUserStore(db)
	taskStore := persistence.NewTaskStore(db)

	embeddingStore, err := buildEmbeddingStore(ctx, cfg, db, dimension, logger)
	if err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("embedding store: %w", err), errClose)
	}

	// Create application services
	registry := service.NewRegistry()
	queue := service.NewQueue(taskStore, logger)
	worker := service.NewWorker(taskStore, registry, logger)
	if cfg.workerPollPeriod > 0 {
		worker.WithPollPeriod(cfg.workerPollPeriod)
	}

	indexer := service.NewIndexer(embedder, embeddingStore, logger)
	retrievalSvc := service.NewRetrieval(embedder, formStore, logger).
		WithThreshold(cfg.retrieval.SimilarityThreshold()).
		WithCandidateLimit(cfg.retrieval.CandidateLimit())

	client := &Client{
		db:         db,
		formStore:  formStore,
		embeddings: embeddingStore,
		indexer:    indexer,
		queue:      queue,
		worker:     worker,
		registry:   registry,
		closers:    cfg.closers,
		logger:     logger,
		dataDir:    cfg.dataDir,
	}

	// Initialize service fields directly
	client.Auth = service.NewAuth(userStore, cfg.auth, logger)
	client.Forms = service.NewForms(formStore, queue, logger)
	client.Generator = service.NewGenerator(
		cfg.chatProvider, retrievalSvc, indexer, formStore, queue, &client.closed, logger,
	).WithTopK(cfg.retrieval.TopK())
	client.Retrieval = retrievalSvc
	client.Tasks = queue

	// Register task handlers
	if err := client.registerHandlers(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("register handlers: %w", err)
	}

	// Validate all queue operations have handlers
	if err := client.validateHandlers(); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Start the background worker
	if cfg.workerEnabled {
		worker.Start(ctx)
	}

	return client, nil
}

// Close releases all resources and stops the background worker.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Stop the worker
	c.worker.Stop()

	// Close registered resources (e.g. caching transports)
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	// Close the database
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("centralign client closed")
	return nil
}

// Worker returns the background task worker. Callers that construct the
// client with WithoutWorker drive it manually through ProcessOne.
func (c *Client) Worker() *service.Worker {
	return c.worker
}

// Indexer returns the embedding indexer service.
func (c *Client) Indexer() *service.Indexer {
	return c.indexer
}

// DB returns the underlying database handle.
func (c *Client) DB() database.Database {
	return c.db
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// embeddingAdapter adapts provider.Embedder to the domain retrieval.Embedder
// interface. The dimension is the declared vector width; PostgreSQL
// construction probes the provider so the declaration matches reality.
type embeddingAdapter struct {
	inner     provider.Embedder
	dimension int
}

func (a *embeddingAdapter) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := a.inner.Embed(ctx, provider.NewEmbeddingRequest(texts))
	if err != nil {
		return nil, err
	}
	return resp.Embeddings(), nil
}

func (a *embeddingAdapter) Dimension() int {
	return a.dimension
}

// buildEmbeddingStore creates the embedding store for the configured dialect.
func buildEmbeddingStore(ctx context.Context, cfg *clientConfig, db database.Database, dimension int, logger *slog.Logger) (retrieval.EmbeddingStore, error) {
	switch cfg.database {
	case databasePostgres:
		return persistence.NewPgvectorEmbeddingStore(ctx, db, dimension, logger)
	default:
		return persistence.NewSQLiteEmbeddingStore(db, logger)
	}
}
