// Package main is the entry point for the funnel CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/log"
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
	var envFile string

	cmd := &cobra.Command{
		Use:           "funnel",
		Short:         "Review funnel server",
		Long:          `Funnel routes happy customers to public review sites and unhappy ones to private feedback.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	cmd.AddCommand(serveCmd(&envFile))
	cmd.AddCommand(migrateCmd(&envFile))
	cmd.AddCommand(adminCmd(&envFile))
	cmd.AddCommand(exportCmd(&envFile))
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

// openClient builds a client for one-shot commands. Workers are left to the
// serve command.
func openClient(envFile string, opts ...funnel.Option) (*funnel.Client, *slog.Logger, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, nil, err
	}
	logger := log.Configure(cfg)

	base := []funnel.Option{
		funnel.WithConfig(cfg),
		funnel.WithLogger(logger),
		funnel.WithoutWorker(),
	}
	client, err := funnel.New(append(base, opts...)...)
	if err != nil {
		return nil, nil, fmt.Errorf("create funnel client: %w", err)
	}
	return client, logger, nil
}
