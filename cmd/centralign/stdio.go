package main

import (
	"fmt"
	"log/slog"
	"os"

	centralign "github.com/codeBunny2022/CentrAlignWebapp"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/log"
	"github.com/codeBunny2022/CentrAlignWebapp/internal/mcp"
	"github.com/spf13/cobra"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants retrieve a user's prior forms as generation context
and look up stored form definitions.
Configuration is loaded from environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Stdout carries the JSON-RPC stream, so logs go to stderr.
	logger := log.NewLoggerWithWriter(os.Stderr, cfg.LogFormat(), cfg.LogLevel())
	slogger := logger.Slog()

	slogger.Info("starting MCP server",
		slog.String("version", version),
		slog.String("data_dir", cfg.DataDir()),
	)

	opts := append(clientOptions(cfg), centralign.WithLogger(slogger))

	client, err := centralign.New(opts...)
	if err != nil {
		return fmt.Errorf("create centralign client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			slogger.Error("failed to close centralign client", slog.Any("error", err))
		}
	}()

	mcpServer := mcp.NewServer(client.Retrieval, client.Forms, version, slogger)

	return mcpServer.ServeStdio()
}
