// Package main is the entry point for the centralign CLI.
//
//	@title						CentrAlign API
//	@version					1.0
//	@description				Form definition generator with context-aware retrieval over prior forms
//	@host						localhost:8080
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token issued by /auth/register or /auth/login, sent as "Bearer {token}"
package main

import (
	"fmt"
	"os"

	"github.com/codeBunny2022/CentrAlignWebapp/internal/config"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "centralign",
		Short: "CentrAlign form generation server",
		Long:  `CentrAlign generates structured form definitions from natural-language prompts, grounding each generation in the user's most relevant prior forms.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(envFile string) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
