package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., OPENAI_API_KEY).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.centralign
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/centralign.db
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// CORSOrigins is a comma-separated list of allowed origins.
	// Env: CORS_ORIGINS (default: *)
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// ConfigFile is an optional YAML config file applied before env vars.
	// Env: CONFIG_FILE
	ConfigFile string `envconfig:"CONFIG_FILE"`

	// EmbeddingDimension is the vector dimension of the local embedder.
	// Env: EMBEDDING_DIMENSION (default: 128)
	EmbeddingDimension int `envconfig:"EMBEDDING_DIMENSION" default:"128"`

	// GenerationProvider pins the chat backend for schema generation
	// (openai, anthropic, or none). Unset means auto-detect from API keys.
	// Env: GENERATION_PROVIDER
	GenerationProvider string `envconfig:"GENERATION_PROVIDER"`

	// OpenAI configures the language-model provider.
	OpenAI OpenAIEnv `envconfig:"OPENAI"`

	// Anthropic configures the Anthropic chat provider.
	Anthropic AnthropicEnv `envconfig:"ANTHROPIC"`

	// Retrieval configures the context retrieval policy.
	Retrieval RetrievalEnv `envconfig:"RETRIEVAL"`

	// Auth configures session tokens.
	Auth AuthEnv `envconfig:"AUTH"`

	// Worker configures the background task worker.
	Worker WorkerEnv `envconfig:"WORKER"`
}

// OpenAIEnv holds environment configuration for the model provider.
type OpenAIEnv struct {
	// APIKey is the provider API key. Unset means the deterministic local
	// embedder and template generator are used.
	// Env: OPENAI_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// BaseURL overrides the provider base URL (for proxies or compatible servers).
	// Env: OPENAI_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the chat completion model.
	// Env: OPENAI_MODEL (default: gpt-4)
	Model string `envconfig:"MODEL" default:"gpt-4"`

	// EmbeddingModel is the embedding model.
	// Env: OPENAI_EMBEDDING_MODEL (default: text-embedding-3-small)
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// Timeout is the request timeout in seconds.
	// Env: OPENAI_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: OPENAI_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`

	// InitialDelay is the initial retry delay in seconds.
	// Env: OPENAI_INITIAL_DELAY (default: 2.0)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"2.0"`

	// BackoffFactor is the retry backoff multiplier.
	// Env: OPENAI_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
}

// AnthropicEnv holds environment configuration for the Anthropic provider.
// Anthropic serves chat only; embeddings always come from the OpenAI
// endpoint or the local embedder.
type AnthropicEnv struct {
	// APIKey is the Anthropic API key.
	// Env: ANTHROPIC_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// BaseURL overrides the API base URL.
	// Env: ANTHROPIC_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the Claude model used for schema generation.
	// Env: ANTHROPIC_MODEL
	Model string `envconfig:"MODEL"`

	// Timeout is the request timeout in seconds.
	// Env: ANTHROPIC_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxRetries is the maximum number of retries.
	// Env: ANTHROPIC_MAX_RETRIES (default: 5)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"5"`
}

// RetrievalEnv holds environment configuration for retrieval policy.
type RetrievalEnv struct {
	// TopK is the default number of context entries returned.
	// Env: RETRIEVAL_TOP_K (default: 5)
	TopK int `envconfig:"TOP_K" default:"5"`

	// SimilarityThreshold is the exclusive minimum similarity.
	// Env: RETRIEVAL_SIMILARITY_THRESHOLD (default: 0.1)
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.1"`

	// CandidateLimit caps the candidates fetched per retrieval call.
	// Env: RETRIEVAL_CANDIDATE_LIMIT (default: 1000)
	CandidateLimit int `envconfig:"CANDIDATE_LIMIT" default:"1000"`
}

// AuthEnv holds environment configuration for session tokens.
type AuthEnv struct {
	// JWTSecret is the HMAC signing secret for session tokens.
	// Env: AUTH_JWT_SECRET
	JWTSecret string `envconfig:"JWT_SECRET"`

	// TokenTTLHours is the session token lifetime in hours.
	// Env: AUTH_TOKEN_TTL_HOURS (default: 24)
	TokenTTLHours float64 `envconfig:"TOKEN_TTL_HOURS" default:"24"`
}

// WorkerEnv holds environment configuration for the background worker.
type WorkerEnv struct {
	// Enabled controls whether the worker runs inside the server process.
	// Env: WORKER_ENABLED (default: true)
	Enabled bool `envconfig:"ENABLED" default:"true"`

	// PollIntervalSeconds is the queue poll interval in seconds.
	// Env: WORKER_POLL_INTERVAL_SECONDS (default: 1.0)
	PollIntervalSeconds float64 `envconfig:"POLL_INTERVAL_SECONDS" default:"1.0"`
}

// LoadFromEnv loads configuration from environment variables with no prefix.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig, layered on top of base.
func (e EnvConfig) ToAppConfig(base AppConfig) AppConfig {
	cfg := base

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = cfg.Apply(WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(ParseLogFormat(e.LogFormat)))
	}
	if e.CORSOrigins != "" {
		cfg = cfg.Apply(WithCORSOrigins(ParseOrigins(e.CORSOrigins)))
	}

	if e.OpenAI.IsConfigured() {
		cfg = cfg.Apply(WithProviderEndpoint(e.OpenAI.ToEndpoint()))
	}
	if e.Anthropic.IsConfigured() {
		cfg = cfg.Apply(WithAnthropicEndpoint(e.Anthropic.ToEndpoint()))
	}
	if backend := ParseGenerationBackend(e.GenerationProvider); backend != "" {
		cfg = cfg.Apply(WithGeneration(backend))
	}

	cfg = cfg.Apply(WithRetrievalConfig(
		cfg.Retrieval().
			WithDimension(e.EmbeddingDimension).
			WithTopK(e.Retrieval.TopK).
			WithSimilarityThreshold(e.Retrieval.SimilarityThreshold).
			WithCandidateLimit(e.Retrieval.CandidateLimit),
	))

	auth := cfg.Auth()
	if e.Auth.JWTSecret != "" {
		auth = auth.WithJWTSecret(e.Auth.JWTSecret)
	}
	auth = auth.WithTokenTTL(time.Duration(e.Auth.TokenTTLHours * float64(time.Hour)))
	cfg = cfg.Apply(WithAuthConfig(auth))

	cfg = cfg.Apply(WithWorkerConfig(
		cfg.Worker().
			WithEnabled(e.Worker.Enabled).
			WithPollInterval(time.Duration(e.Worker.PollIntervalSeconds * float64(time.Second))),
	))

	return cfg
}

// IsConfigured returns true if the provider has an API key set.
func (o OpenAIEnv) IsConfigured() bool {
	return o.APIKey != ""
}

// IsConfigured returns true if the provider has an API key set.
func (a AnthropicEnv) IsConfigured() bool {
	return a.APIKey != ""
}

// ToEndpoint converts AnthropicEnv to an Endpoint.
func (a AnthropicEnv) ToEndpoint() Endpoint {
	model := a.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	opts := []EndpointOption{
		WithAPIKey(a.APIKey),
		WithChatModel(model),
		WithTimeout(time.Duration(a.Timeout * float64(time.Second))),
		WithMaxRetries(a.MaxRetries),
	}

	if a.BaseURL != "" {
		opts = append(opts, WithBaseURL(a.BaseURL))
	}

	return NewEndpointWithOptions(opts...)
}

// ToEndpoint converts OpenAIEnv to an Endpoint.
func (o OpenAIEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithAPIKey(o.APIKey),
		WithTimeout(time.Duration(o.Timeout * float64(time.Second))),
		WithMaxRetries(o.MaxRetries),
		WithInitialDelay(time.Duration(o.InitialDelay * float64(time.Second))),
		WithBackoffFactor(o.BackoffFactor),
	}

	if o.BaseURL != "" {
		opts = append(opts, WithBaseURL(o.BaseURL))
	}
	if o.Model != "" {
		opts = append(opts, WithChatModel(o.Model))
	}
	if o.EmbeddingModel != "" {
		opts = append(opts, WithEmbeddingModel(o.EmbeddingModel))
	}

	return NewEndpointWithOptions(opts...)
}

// ParseLogFormat parses a log format string.
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
