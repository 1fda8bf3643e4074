package centralign

import (
	"io"
	"log/slog"
	"time"

	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/provider"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
)

// databaseType identifies the database.
type databaseType int

const (
	databaseUnset databaseType = iota
	databaseSQLite
	databasePostgres
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	database           databaseType
	dbPath             string
	dbDSN              string
	dataDir            string
	chatProvider       provider.TextGenerator
	embeddingProvider  provider.Embedder
	embeddingDimension int
	retrieval          config.RetrievalConfig
	auth               config.AuthConfig
	logger             *slog.Logger
	workerEnabled      bool
	workerPollPeriod   time.Duration
	closers            []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
// This ensures all defaults come from the single source of truth.
func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:            config.DefaultDataDir(),
		embeddingDimension: config.DefaultEmbeddingDimension,
		retrieval:          config.NewRetrievalConfig(),
		auth:               config.NewAuthConfig(),
		workerEnabled:      true,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithSQLite configures SQLite as the database. Embedding vectors are stored
// as JSON, so no extension is required.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.database = databaseSQLite
		c.dbPath = path
	}
}

// WithPostgres configures PostgreSQL with the pgvector extension as the
// database. Embedding vectors are stored in a native vector column.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.database = databasePostgres
		c.dbDSN = dsn
	}
}

// WithOpenAI sets OpenAI as the AI provider (chat + embeddings).
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		p := provider.NewOpenAIProvider(apiKey)
		c.chatProvider = p
		c.embeddingProvider = p
	}
}

// WithOpenAIConfig sets OpenAI with custom configuration.
func WithOpenAIConfig(cfg provider.OpenAIConfig) Option {
	return func(c *clientConfig) {
		p := provider.NewOpenAIProviderFromConfig(cfg)
		c.chatProvider = p
		c.embeddingProvider = p
	}
}

// WithAnthropic sets Anthropic Claude as the chat provider. Anthropic does
// not serve embeddings, so the embedding provider is left as configured.
func WithAnthropic(apiKey string) Option {
	return func(c *clientConfig) {
		c.chatProvider = provider.NewAnthropicProvider(apiKey)
	}
}

// WithAnthropicConfig sets Anthropic Claude with custom configuration.
func WithAnthropicConfig(cfg provider.AnthropicConfig) Option {
	return func(c *clientConfig) {
		c.chatProvider = provider.NewAnthropicProviderFromConfig(cfg)
	}
}

// WithChatProvider sets a custom chat provider for schema generation.
// A nil provider means every prompt is served by the category templates.
func WithChatProvider(p provider.TextGenerator) Option {
	return func(c *clientConfig) {
		c.chatProvider = p
	}
}

// WithEmbeddingProvider sets a custom embedding provider. Without one the
// client falls back to the deterministic hash embedder.
func WithEmbeddingProvider(p provider.Embedder) Option {
	return func(c *clientConfig) {
		c.embeddingProvider = p
	}
}

// WithEmbeddingDimension sets the vector width for the hash embedder.
// Ignored when an external embedding provider dictates its own width.
// Values <= 0 are ignored.
func WithEmbeddingDimension(n int) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.embeddingDimension = n
		}
	}
}

// WithRetrievalConfig sets the retrieval policy (top-K, similarity
// threshold, candidate limit).
func WithRetrievalConfig(r config.RetrievalConfig) Option {
	return func(c *clientConfig) {
		c.retrieval = r
	}
}

// WithAuthConfig sets the session token configuration.
func WithAuthConfig(a config.AuthConfig) Option {
	return func(c *clientConfig) {
		c.auth = a
	}
}

// WithJWTSecret sets the session token signing secret.
func WithJWTSecret(secret string) Option {
	return func(c *clientConfig) {
		c.auth = c.auth.WithJWTSecret(secret)
	}
}

// WithDataDir sets the data directory for database storage.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithWorkerPollPeriod sets how often the background worker checks for new
// tasks. Defaults to 1 second. Lower values speed up task processing at the
// cost of more frequent polling, which is useful in tests.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		c.workerPollPeriod = d
	}
}

// WithoutWorker disables the background worker. Queued tasks stay pending
// until the caller drives Worker().ProcessOne, which tests rely on for
// deterministic ordering.
func WithoutWorker() Option {
	return func(c *clientConfig) {
		c.workerEnabled = false
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
