// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost               = "0.0.0.0"
	DefaultPort               = 8080
	DefaultLogLevel           = "INFO"
	DefaultTokenTTL           = 24 * time.Hour
	DefaultEmbeddingDimension = 128
	DefaultTopK               = 5
	DefaultThreshold          = 0.1
	DefaultCandidateLimit     = 1000
	DefaultWorkerPollInterval = time.Second
	DefaultProviderTimeout    = 60 * time.Second
	DefaultProviderRetries    = 5
	DefaultProviderDelay      = 2 * time.Second
	DefaultProviderBackoff    = 2.0
	DefaultChatModel          = "gpt-4"
	DefaultEmbeddingModel     = "text-embedding-3-small"
	DefaultAnthropicModel     = "claude-sonnet-4-20250514"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// GenerationBackend selects which chat provider turns prompts into schemas.
type GenerationBackend string

// GenerationBackend values. GenerationNone means the deterministic
// category-template builder handles every prompt.
const (
	GenerationOpenAI    GenerationBackend = "openai"
	GenerationAnthropic GenerationBackend = "anthropic"
	GenerationNone      GenerationBackend = "none"
)

// ParseGenerationBackend parses a backend name. Unknown or empty values
// return "" so the caller can fall back to auto-detection.
func ParseGenerationBackend(s string) GenerationBackend {
	switch GenerationBackend(strings.ToLower(strings.TrimSpace(s))) {
	case GenerationOpenAI:
		return GenerationOpenAI
	case GenerationAnthropic:
		return GenerationAnthropic
	case GenerationNone:
		return GenerationNone
	}
	return ""
}

// Endpoint configures the language-model provider endpoint used for both
// schema generation and remote embeddings.
type Endpoint struct {
	baseURL        string
	apiKey         string
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	maxRetries     int
	initialDelay   time.Duration
	backoffFactor  float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		chatModel:      DefaultChatModel,
		embeddingModel: DefaultEmbeddingModel,
		timeout:        DefaultProviderTimeout,
		maxRetries:     DefaultProviderRetries,
		initialDelay:   DefaultProviderDelay,
		backoffFactor:  DefaultProviderBackoff,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// ChatModel returns the chat completion model identifier.
func (e Endpoint) ChatModel() string { return e.chatModel }

// EmbeddingModel returns the embedding model identifier.
func (e Endpoint) EmbeddingModel() string { return e.embeddingModel }

// Timeout returns the request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial retry delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// BackoffFactor returns the retry backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// IsConfigured returns true if the endpoint has an API key set.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithChatModel sets the chat model.
func WithChatModel(model string) EndpointOption {
	return func(e *Endpoint) { e.chatModel = model }
}

// WithEmbeddingModel sets the embedding model.
func WithEmbeddingModel(model string) EndpointOption {
	return func(e *Endpoint) { e.embeddingModel = model }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the maximum retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial retry delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithBackoffFactor sets the retry backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// RetrievalConfig holds the retrieval policy parameters. The defaults mirror
// the original threshold/top-K constants; they are policy, not invariants.
type RetrievalConfig struct {
	dimension           int
	topK                int
	similarityThreshold float64
	candidateLimit      int
}

// NewRetrievalConfig creates a RetrievalConfig with defaults.
func NewRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		dimension:           DefaultEmbeddingDimension,
		topK:                DefaultTopK,
		similarityThreshold: DefaultThreshold,
		candidateLimit:      DefaultCandidateLimit,
	}
}

// Dimension returns the embedding vector dimension.
func (r RetrievalConfig) Dimension() int { return r.dimension }

// TopK returns the default number of context entries to retrieve.
func (r RetrievalConfig) TopK() int { return r.topK }

// SimilarityThreshold returns the exclusive minimum similarity for a
// candidate to appear in ranked results.
func (r RetrievalConfig) SimilarityThreshold() float64 { return r.similarityThreshold }

// CandidateLimit returns the per-call cap on fetched candidates.
func (r RetrievalConfig) CandidateLimit() int { return r.candidateLimit }

// WithDimension returns a new config with the specified dimension.
func (r RetrievalConfig) WithDimension(d int) RetrievalConfig {
	if d > 0 {
		r.dimension = d
	}
	return r
}

// WithTopK returns a new config with the specified top-K default.
func (r RetrievalConfig) WithTopK(k int) RetrievalConfig {
	if k > 0 {
		r.topK = k
	}
	return r
}

// WithSimilarityThreshold returns a new config with the specified threshold.
func (r RetrievalConfig) WithSimilarityThreshold(t float64) RetrievalConfig {
	r.similarityThreshold = t
	return r
}

// WithCandidateLimit returns a new config with the specified candidate cap.
func (r RetrievalConfig) WithCandidateLimit(n int) RetrievalConfig {
	if n > 0 {
		r.candidateLimit = n
	}
	return r
}

// AuthConfig holds session-token signing configuration.
type AuthConfig struct {
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthConfig creates an AuthConfig with defaults. The secret default is
// empty; serving refuses to start without one unless auth is unused.
func NewAuthConfig() AuthConfig {
	return AuthConfig{tokenTTL: DefaultTokenTTL}
}

// JWTSecret returns the HMAC signing secret.
func (a AuthConfig) JWTSecret() string { return a.jwtSecret }

// TokenTTL returns the session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration { return a.tokenTTL }

// IsConfigured returns true if a signing secret is set.
func (a AuthConfig) IsConfigured() bool { return a.jwtSecret != "" }

// WithJWTSecret returns a new config with the specified secret.
func (a AuthConfig) WithJWTSecret(secret string) AuthConfig {
	a.jwtSecret = secret
	return a
}

// WithTokenTTL returns a new config with the specified token lifetime.
func (a AuthConfig) WithTokenTTL(d time.Duration) AuthConfig {
	if d > 0 {
		a.tokenTTL = d
	}
	return a
}

// WorkerConfig configures the background task worker.
type WorkerConfig struct {
	enabled      bool
	pollInterval time.Duration
}

// NewWorkerConfig creates a WorkerConfig with defaults.
func NewWorkerConfig() WorkerConfig {
	return WorkerConfig{
		enabled:      true,
		pollInterval: DefaultWorkerPollInterval,
	}
}

// Enabled returns whether the background worker runs.
func (w WorkerConfig) Enabled() bool { return w.enabled }

// PollInterval returns the queue poll interval.
func (w WorkerConfig) PollInterval() time.Duration { return w.pollInterval }

// WithEnabled returns a new config with the specified enabled state.
func (w WorkerConfig) WithEnabled(enabled bool) WorkerConfig {
	w.enabled = enabled
	return w
}

// WithPollInterval returns a new config with the specified poll interval.
func (w WorkerConfig) WithPollInterval(d time.Duration) WorkerConfig {
	if d > 0 {
		w.pollInterval = d
	}
	return w
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host        string
	port        int
	dataDir     string
	dbURL       string
	logLevel    string
	logFormat   LogFormat
	corsOrigins []string
	generation  GenerationBackend
	provider    *Endpoint
	anthropic   *Endpoint
	retrieval   RetrievalConfig
	auth        AuthConfig
	worker      WorkerConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".centralign"
	}
	return filepath.Join(home, ".centralign")
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:        DefaultHost,
		port:        DefaultPort,
		dataDir:     dataDir,
		dbURL:       "sqlite:///" + filepath.Join(dataDir, "centralign.db"),
		logLevel:    DefaultLogLevel,
		logFormat:   LogFormatPretty,
		corsOrigins: []string{"*"},
		retrieval:   NewRetrievalConfig(),
		auth:        NewAuthConfig(),
		worker:      NewWorkerConfig(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// CORSOrigins returns the allowed CORS origins.
func (c AppConfig) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

// Provider returns the language-model endpoint config, or nil if none is
// configured (the deterministic local paths are used instead).
func (c AppConfig) Provider() *Endpoint { return c.provider }

// Anthropic returns the Anthropic endpoint config, or nil if none is
// configured.
func (c AppConfig) Anthropic() *Endpoint { return c.anthropic }

// Generation returns the chat backend used for schema generation. When no
// backend is set explicitly, the choice falls back to whichever endpoint has
// an API key, preferring OpenAI, then to GenerationNone.
func (c AppConfig) Generation() GenerationBackend {
	if c.generation != "" {
		return c.generation
	}
	if c.provider != nil && c.provider.IsConfigured() {
		return GenerationOpenAI
	}
	if c.anthropic != nil && c.anthropic.IsConfigured() {
		return GenerationAnthropic
	}
	return GenerationNone
}

// Retrieval returns the retrieval policy config.
func (c AppConfig) Retrieval() RetrievalConfig { return c.retrieval }

// Auth returns the auth config.
func (c AppConfig) Auth() AuthConfig { return c.auth }

// Worker returns the worker config.
func (c AppConfig) Worker() WorkerConfig { return c.worker }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		if c.dbURL == "" || strings.Contains(c.dbURL, "centralign.db") {
			c.dbURL = "sqlite:///" + filepath.Join(dir, "centralign.db")
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithProviderEndpoint sets the language-model endpoint.
func WithProviderEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.provider = &e }
}

// WithAnthropicEndpoint sets the Anthropic endpoint.
func WithAnthropicEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.anthropic = &e }
}

// WithGeneration pins the chat backend used for schema generation.
func WithGeneration(b GenerationBackend) AppConfigOption {
	return func(c *AppConfig) { c.generation = b }
}

// WithRetrievalConfig sets the retrieval policy config.
func WithRetrievalConfig(r RetrievalConfig) AppConfigOption {
	return func(c *AppConfig) { c.retrieval = r }
}

// WithAuthConfig sets the auth config.
func WithAuthConfig(a AuthConfig) AppConfigOption {
	return func(c *AppConfig) { c.auth = a }
}

// WithWorkerConfig sets the worker config.
func WithWorkerConfig(w WorkerConfig) AppConfigOption {
	return func(c *AppConfig) { c.worker = w }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("generation_backend", string(c.Generation())),
		slog.String("provider_base_url", c.providerBaseURL()),
		slog.String("provider_chat_model", c.providerChatModel()),
		slog.Int("embedding_dimension", c.retrieval.Dimension()),
		slog.Int("retrieval_top_k", c.retrieval.TopK()),
		slog.Float64("retrieval_threshold", c.retrieval.SimilarityThreshold()),
		slog.Int("retrieval_candidate_limit", c.retrieval.CandidateLimit()),
		slog.Bool("auth_configured", c.auth.IsConfigured()),
		slog.Bool("worker_enabled", c.worker.Enabled()),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

func (c AppConfig) providerBaseURL() string {
	if c.provider == nil {
		return "(not configured)"
	}
	return c.provider.BaseURL()
}

func (c AppConfig) providerChatModel() string {
	if c.provider == nil {
		return "(not configured)"
	}
	return c.provider.ChatModel()
}

// ParseOrigins parses a comma-separated string of CORS origins.
func ParseOrigins(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
