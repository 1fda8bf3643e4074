package main

import (
	"strings"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/provider"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
)

// clientOptions returns the centralign.Option slice derived from the shared
// parts of AppConfig: database storage, model providers, retrieval policy,
// auth, and the background worker. Callers append entrypoint-specific options
// (logger, worker overrides) before passing the full slice to centralign.New.
func clientOptions(cfg config.AppConfig) []centralign.Option {
	opts := []centralign.Option{
		centralign.WithDataDir(cfg.DataDir()),
	}

	opts = append(opts, storageOptions(cfg)...)
	opts = append(opts, providerOptions(cfg)...)

	opts = append(opts,
		centralign.WithRetrievalConfig(cfg.Retrieval()),
		centralign.WithEmbeddingDimension(cfg.Retrieval().Dimension()),
		centralign.WithAuthConfig(cfg.Auth()),
	)

	if cfg.Worker().Enabled() {
		opts = append(opts, centralign.WithWorkerPollPeriod(cfg.Worker().PollInterval()))
	} else {
		opts = append(opts, centralign.WithoutWorker())
	}

	return opts
}

// storageOptions returns the centralign.Option for the configured database
// backend.
func storageOptions(cfg config.AppConfig) []centralign.Option {
	dbURL := cfg.DBURL()

	if dbURL != "" && !isSQLite(dbURL) {
		return []centralign.Option{centralign.WithPostgres(dbURL)}
	}

	dbPath := cfg.DataDir() + "/centralign.db"
	if dbURL != "" && isSQLite(dbURL) {
		dbPath = strings.TrimPrefix(dbURL, "sqlite:///")
		if dbPath == dbURL {
			dbPath = strings.TrimPrefix(dbURL, "sqlite:")
		}
	}

	return []centralign.Option{centralign.WithSQLite(dbPath)}
}

// providerOptions returns the centralign.Option slice for the configured
// model providers. An OpenAI endpoint serves both chat and embeddings; an
// Anthropic endpoint overrides chat only, and GENERATION_PROVIDER=none keeps
// schema generation on the category templates even when a key is present.
func providerOptions(cfg config.AppConfig) []centralign.Option {
	var opts []centralign.Option

	if p := cfg.Provider(); p != nil && p.IsConfigured() {
		opts = append(opts, centralign.WithOpenAIConfig(provider.OpenAIConfig{
			APIKey:         p.APIKey(),
			BaseURL:        p.BaseURL(),
			ChatModel:      p.ChatModel(),
			EmbeddingModel: p.EmbeddingModel(),
			Timeout:        p.Timeout(),
			MaxRetries:     p.MaxRetries(),
			InitialDelay:   p.InitialDelay(),
			BackoffFactor:  p.BackoffFactor(),
		}))
	}

	switch cfg.Generation() {
	case config.GenerationAnthropic:
		if a := cfg.Anthropic(); a != nil && a.IsConfigured() {
			opts = append(opts, centralign.WithAnthropicConfig(provider.AnthropicConfig{
				APIKey:     a.APIKey(),
				BaseURL:    a.BaseURL(),
				Model:      a.ChatModel(),
				Timeout:    a.Timeout(),
				MaxRetries: a.MaxRetries(),
			}))
		}
	case config.GenerationNone:
		opts = append(opts, centralign.WithChatProvider(nil))
	}

	return opts
}

// isSQLite checks if the database URL is for SQLite.
func isSQLite(url string) bool {
	return strings.HasPrefix(url, "sqlite:")
}
