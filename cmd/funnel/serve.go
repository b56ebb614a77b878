package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/infrastructure/api"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/log"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(envFile *string) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server and queue workers",
		Long: `Start the HTTP API server and queue workers.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                         Server host to bind to (default: 0.0.0.0)
  PORT                         Server port to listen on (default: 8080)
  DATA_DIR                     Data directory (default: .funnel)
  DB_URL                       Database URL (default: sqlite:///{data_dir}/funnel.db)
  LOG_LEVEL                    Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT                   Log format: pretty, json (default: pretty)
  PUBLIC_URL                   Base URL of the web app, used in email links
  CORS_ALLOWED_ORIGINS         Comma-separated browser origins
  ADMIN_EMAILS                 Comma-separated operator addresses
  INVITE_ONLY                  Require an invite code to sign up (default: false)
  WORKER_COUNT                 Queue workers (default: 1)

  AUTH_JWT_SECRET              Token signing secret, at least 32 characters
  AUTH_TOKEN_TTL               Session lifetime (default: 168h)

  EMAIL_ENDPOINT_*             Email API (BASE_URL, API_KEY, TIMEOUT, MAX_RETRIES)
  EMAIL_FROM                   Sender address
  EMAIL_NOTIFY_ADDRESS         Where new lead notices go

  PAYMENT_ENDPOINT_*           Payment API (same fields as EMAIL_ENDPOINT)
  PAYMENT_WEBHOOK_SECRET       Webhook signing secret
  PAYMENT_SUBSCRIPTION_PRICE_ID, PAYMENT_EARLY_ACCESS_PRICE_ID

  ANALYTICS_ENDPOINT_*         Product analytics API

  RATE_LIMIT_REDIS_URL         Enables rate limiting of public forms
  RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *envFile, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(parent context.Context, envFile, host string, port int) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	cfg = applyServeOverrides(cfg, host, port)

	logger := log.Configure(cfg)
	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(parent, slog.LevelInfo, "starting funnel", attrs...)

	client, err := funnel.New(funnel.WithConfig(cfg), funnel.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create funnel client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close funnel client", slog.Any("error", err))
		}
	}()

	apiServer := api.NewAPIServer(client)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return apiServer.ListenAndServe(cfg.Addr())
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
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
