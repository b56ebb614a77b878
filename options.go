package funnel

import (
	"io"
	"log/slog"
	"time"

	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
)

// clientConfig holds configuration for Client construction.
type clientConfig struct {
	appConfig    config.AppConfig
	dbURL        string
	logger       *slog.Logger
	startWorkers bool

	mailer    domainservice.Mailer
	analytics domainservice.Analytics
	gateway   domainservice.PaymentGateway
	verifier  domainservice.WebhookVerifier
	hasher    domainservice.PasswordHasher
	limiter   domainservice.RateLimiter
	closers   []io.Closer
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		appConfig:    config.NewAppConfig(),
		startWorkers: true,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig replaces the application configuration. Its database URL is
// used unless WithSQLite or WithPostgres is also given.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.appConfig = cfg
	}
}

// WithSQLite stores data in the SQLite file at path. ":memory:" gives a
// throwaway database.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres stores data in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithWorkerCount sets the number of background worker goroutines.
// Values <= 0 are ignored.
func WithWorkerCount(n int) Option {
	return func(c *clientConfig) {
		c.appConfig = c.appConfig.Apply(config.WithWorkerCount(n))
	}
}

// WithWorkerPollPeriod sets how often idle workers check for new tasks.
func WithWorkerPollPeriod(d time.Duration) Option {
	return func(c *clientConfig) {
		c.appConfig = c.appConfig.Apply(config.WithWorkerPollPeriod(d))
	}
}

// WithoutWorker leaves queued tasks for another process or for Drain. Used
// by one-shot CLI commands and tests.
func WithoutWorker() Option {
	return func(c *clientConfig) {
		c.startWorkers = false
	}
}

// WithMailer replaces the email client.
func WithMailer(m domainservice.Mailer) Option {
	return func(c *clientConfig) {
		c.mailer = m
	}
}

// WithAnalytics replaces the product analytics client.
func WithAnalytics(a domainservice.Analytics) Option {
	return func(c *clientConfig) {
		c.analytics = a
	}
}

// WithPaymentGateway replaces the checkout client.
func WithPaymentGateway(g domainservice.PaymentGateway) Option {
	return func(c *clientConfig) {
		c.gateway = g
	}
}

// WithWebhookVerifier replaces the webhook signature check.
func WithWebhookVerifier(v domainservice.WebhookVerifier) Option {
	return func(c *clientConfig) {
		c.verifier = v
	}
}

// WithPasswordHasher replaces bcrypt. Tests use a cheaper hasher.
func WithPasswordHasher(h domainservice.PasswordHasher) Option {
	return func(c *clientConfig) {
		c.hasher = h
	}
}

// WithRateLimiter replaces the Redis limiter built from configuration.
func WithRateLimiter(l domainservice.RateLimiter) Option {
	return func(c *clientConfig) {
		c.limiter = l
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(cl io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, cl)
	}
}
