package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the YAML config file layout. All fields are optional;
// zero values leave the base configuration untouched. Environment variables
// take precedence over file values.
type FileConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	DataDir     string   `yaml:"data_dir"`
	DBURL       string   `yaml:"db_url"`
	LogLevel    string   `yaml:"log_level"`
	LogFormat   string   `yaml:"log_format"`
	CORSOrigins []string `yaml:"cors_origins"`

	OpenAI struct {
		APIKey         string  `yaml:"api_key"`
		BaseURL        string  `yaml:"base_url"`
		Model          string  `yaml:"model"`
		EmbeddingModel string  `yaml:"embedding_model"`
		Timeout        float64 `yaml:"timeout"`
		MaxRetries     int     `yaml:"max_retries"`
	} `yaml:"openai"`

	Retrieval struct {
		Dimension           int     `yaml:"dimension"`
		TopK                int     `yaml:"top_k"`
		SimilarityThreshold float64 `yaml:"similarity_threshold"`
		CandidateLimit      int     `yaml:"candidate_limit"`
	} `yaml:"retrieval"`

	Auth struct {
		JWTSecret     string  `yaml:"jwt_secret"`
		TokenTTLHours float64 `yaml:"token_ttl_hours"`
	} `yaml:"auth"`

	Worker struct {
		Enabled             *bool   `yaml:"enabled"`
		PollIntervalSeconds float64 `yaml:"poll_interval_seconds"`
	} `yaml:"worker"`
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ToAppConfig layers the file values on top of base.
func (f FileConfig) ToAppConfig(base AppConfig) AppConfig {
	cfg := base

	if f.Host != "" {
		cfg = cfg.Apply(WithHost(f.Host))
	}
	if f.Port != 0 {
		cfg = cfg.Apply(WithPort(f.Port))
	}
	if f.DataDir != "" {
		cfg = cfg.Apply(WithDataDir(f.DataDir))
	}
	if f.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(f.DBURL))
	}
	if f.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(f.LogLevel))
	}
	if f.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(ParseLogFormat(f.LogFormat)))
	}
	if len(f.CORSOrigins) > 0 {
		cfg = cfg.Apply(WithCORSOrigins(f.CORSOrigins))
	}

	if f.OpenAI.APIKey != "" {
		opts := []EndpointOption{WithAPIKey(f.OpenAI.APIKey)}
		if f.OpenAI.BaseURL != "" {
			opts = append(opts, WithBaseURL(f.OpenAI.BaseURL))
		}
		if f.OpenAI.Model != "" {
			opts = append(opts, WithChatModel(f.OpenAI.Model))
		}
		if f.OpenAI.EmbeddingModel != "" {
			opts = append(opts, WithEmbeddingModel(f.OpenAI.EmbeddingModel))
		}
		if f.OpenAI.Timeout > 0 {
			opts = append(opts, WithTimeout(time.Duration(f.OpenAI.Timeout*float64(time.Second))))
		}
		if f.OpenAI.MaxRetries > 0 {
			opts = append(opts, WithMaxRetries(f.OpenAI.MaxRetries))
		}
		cfg = cfg.Apply(WithProviderEndpoint(NewEndpointWithOptions(opts...)))
	}

	retrieval := cfg.Retrieval().
		WithDimension(f.Retrieval.Dimension).
		WithTopK(f.Retrieval.TopK).
		WithCandidateLimit(f.Retrieval.CandidateLimit)
	if f.Retrieval.SimilarityThreshold != 0 {
		retrieval = retrieval.WithSimilarityThreshold(f.Retrieval.SimilarityThreshold)
	}
	cfg = cfg.Apply(WithRetrievalConfig(retrieval))

	auth := cfg.Auth()
	if f.Auth.JWTSecret != "" {
		auth = auth.WithJWTSecret(f.Auth.JWTSecret)
	}
	if f.Auth.TokenTTLHours > 0 {
		auth = auth.WithTokenTTL(time.Duration(f.Auth.TokenTTLHours * float64(time.Hour)))
	}
	cfg = cfg.Apply(WithAuthConfig(auth))

	worker := cfg.Worker()
	if f.Worker.Enabled != nil {
		worker = worker.WithEnabled(*f.Worker.Enabled)
	}
	if f.Worker.PollIntervalSeconds > 0 {
		worker = worker.WithPollInterval(time.Duration(f.Worker.PollIntervalSeconds * float64(time.Second)))
	}
	cfg = cfg.Apply(WithWorkerConfig(worker))

	return cfg
}
