package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	"github.com/codeBunny2022/CentrAlignWebapp/infrastructure/api"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		host    string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. YAML config file (if CONFIG_FILE is set)
  3. .env file (if --env-file specified or .env exists in current directory)
  4. Environment variables
  5. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DATA_DIR                     Data directory (default: ~/.centralign)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/centralign.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  CORS_ORIGINS                 Comma-separated list of allowed browser origins
  CONFIG_FILE                  Optional YAML config file applied before env vars

  AUTH_JWT_SECRET              Session token signing secret (required to serve)
  AUTH_TOKEN_TTL_HOURS         Session token lifetime in hours (default: 24)

  EMBEDDING_DIMENSION          Local embedder vector width (default: 128)
  GENERATION_PROVIDER          Schema generation backend: openai, anthropic, none
                               (default: auto-detect from API keys)

  OPENAI_*                     OpenAI-compatible endpoint configuration
    API_KEY                    API key; unset keeps the local deterministic paths
    BASE_URL                   Base URL override for proxies or compatible servers
    MODEL                      Chat model (default: gpt-4)
    EMBEDDING_MODEL            Embedding model (default: text-embedding-3-small)
    TIMEOUT                    Request timeout in seconds (default: 60)
    MAX_RETRIES                Retry attempts (default: 5)

  ANTHROPIC_*                  Anthropic endpoint configuration (chat only)
    API_KEY, BASE_URL, MODEL, TIMEOUT, MAX_RETRIES

  RETRIEVAL_TOP_K              Context entries per query (default: 5)
  RETRIEVAL_SIMILARITY_THRESHOLD  Minimum similarity, exclusive (default: 0.1)
  RETRIEVAL_CANDIDATE_LIMIT    Candidates fetched per query (default: 1000)

  WORKER_ENABLED               Run the background task worker (default: true)
  WORKER_POLL_INTERVAL_SECONDS Queue poll interval (default: 1.0)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(envFile, host string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// Flags take precedence over env vars.
	cfg = applyServeOverrides(cfg, host, port)

	addr := cfg.Addr()

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	logger := log.NewLogger(cfg)
	slogger := logger.Slog()

	if !cfg.Auth().IsConfigured() {
		return fmt.Errorf("AUTH_JWT_SECRET is required: every API route except registration and login needs session tokens")
	}

	opts := append(clientOptions(cfg), centralign.WithLogger(slogger))

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(context.Background(), slog.LevelInfo, "starting centralign", attrs...)

	client, err := centralign.New(opts...)
	if err != nil {
		return fmt.Errorf("create centralign client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close centralign client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client, cfg.CORSOrigins())
	router := apiServer.Router()
	apiServer.MountRoutes()

	// Root endpoint with API info.
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"name":"centralign","version":"%s","docs":"/docs"}`, version)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	server := api.NewServer(addr, slogger)
	server.Router().Mount("/", router)

	go func() {
		<-sigChan
		slogger.Info("shutting down server")
		cancel()
		if err := server.Shutdown(ctx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	slogger.Info("starting server", slog.String("addr", addr))
	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
