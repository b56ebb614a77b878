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
	DefaultHost                = "0.0.0.0"
	DefaultPort                = 8080
	DefaultLogLevel            = "INFO"
	DefaultPublicURL           = "http://localhost:3000"
	DefaultWorkerCount         = 1
	DefaultWorkerPollPeriod    = time.Second
	DefaultRequestTimeout      = 60 * time.Second
	DefaultTokenTTL            = 7 * 24 * time.Hour
	DefaultResetTokenTTL       = time.Hour
	DefaultEndpointTimeout     = 15 * time.Second
	DefaultEndpointMaxRetries  = 3
	DefaultEmailBaseURL        = "https://api.resend.com"
	DefaultEmailFrom           = "Review Funnel <hello@reviewfunnel.app>"
	DefaultPaymentBaseURL      = "https://api.stripe.com"
	DefaultWebhookTolerance    = 5 * time.Minute
	DefaultEarlyAccessAmount   = 4900
	DefaultAnalyticsBaseURL    = "https://us.i.posthog.com"
	DefaultRateLimitRequests   = 30
	DefaultRateLimitWindow     = time.Minute
	DefaultDatabaseFilename    = "funnel.db"
	DefaultDataDirName         = ".funnel"
	minimumTokenSecretLength   = 32
	developmentTokenSecretSeed = "development-only-secret-change-me-please"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Endpoint configures an outbound HTTP API (email, payments, analytics).
type Endpoint struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
}

// NewEndpoint creates an Endpoint with default timeouts.
func NewEndpoint(baseURL string) Endpoint {
	return Endpoint{
		baseURL:    baseURL,
		timeout:    DefaultEndpointTimeout,
		maxRetries: DefaultEndpointMaxRetries,
	}
}

// BaseURL returns the API base URL.
func (e Endpoint) BaseURL() string { return e.baseURL }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the per-request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the retry count for transient failures.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// IsConfigured returns true when an API key is present.
func (e Endpoint) IsConfigured() bool {
	return e.apiKey != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = strings.TrimRight(url, "/") }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the retry count.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// With returns a copy of the endpoint with the options applied.
func (e Endpoint) With(opts ...EndpointOption) Endpoint {
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// AuthConfig configures bearer tokens and password resets.
type AuthConfig struct {
	tokenSecret   string
	tokenTTL      time.Duration
	resetTokenTTL time.Duration
	adminEmails   []string
}

// NewAuthConfig creates an AuthConfig with defaults.
func NewAuthConfig() AuthConfig {
	return AuthConfig{
		tokenSecret:   developmentTokenSecretSeed,
		tokenTTL:      DefaultTokenTTL,
		resetTokenTTL: DefaultResetTokenTTL,
		adminEmails:   []string{},
	}
}

// TokenSecret returns the HMAC secret for bearer tokens.
func (a AuthConfig) TokenSecret() string { return a.tokenSecret }

// TokenTTL returns the bearer token lifetime.
func (a AuthConfig) TokenTTL() time.Duration { return a.tokenTTL }

// ResetTokenTTL returns the password reset token lifetime.
func (a AuthConfig) ResetTokenTTL() time.Duration { return a.resetTokenTTL }

// AdminEmails returns a copy of the admin allow-list.
func (a AuthConfig) AdminEmails() []string {
	result := make([]string, len(a.adminEmails))
	copy(result, a.adminEmails)
	return result
}

// UsesDevelopmentSecret reports whether the built-in secret is still in use.
func (a AuthConfig) UsesDevelopmentSecret() bool {
	return a.tokenSecret == developmentTokenSecretSeed
}

// Validate checks the token secret is strong enough.
func (a AuthConfig) Validate() error {
	if len(a.tokenSecret) < minimumTokenSecretLength {
		return fmt.Errorf("auth token secret must be at least %d characters", minimumTokenSecretLength)
	}
	return nil
}

// WithTokenSecret returns a copy with the given secret.
func (a AuthConfig) WithTokenSecret(secret string) AuthConfig {
	a.tokenSecret = secret
	return a
}

// WithTokenTTL returns a copy with the given token lifetime.
func (a AuthConfig) WithTokenTTL(d time.Duration) AuthConfig {
	a.tokenTTL = d
	return a
}

// WithResetTokenTTL returns a copy with the given reset token lifetime.
func (a AuthConfig) WithResetTokenTTL(d time.Duration) AuthConfig {
	a.resetTokenTTL = d
	return a
}

// WithAdminEmails returns a copy with the given allow-list, lower-cased.
func (a AuthConfig) WithAdminEmails(emails []string) AuthConfig {
	a.adminEmails = make([]string, 0, len(emails))
	for _, e := range emails {
		a.adminEmails = append(a.adminEmails, strings.ToLower(e))
	}
	return a
}

// EmailConfig configures the transactional email API.
type EmailConfig struct {
	endpoint    Endpoint
	from        string
	notifyEmail string
}

// NewEmailConfig creates an EmailConfig with defaults.
func NewEmailConfig() EmailConfig {
	return EmailConfig{
		endpoint: NewEndpoint(DefaultEmailBaseURL),
		from:     DefaultEmailFrom,
	}
}

// Endpoint returns the API endpoint.
func (e EmailConfig) Endpoint() Endpoint { return e.endpoint }

// From returns the sender address.
func (e EmailConfig) From() string { return e.from }

// NotifyEmail returns the operator address alerted about new leads.
func (e EmailConfig) NotifyEmail() string { return e.notifyEmail }

// WithEndpoint returns a copy with the given endpoint.
func (e EmailConfig) WithEndpoint(ep Endpoint) EmailConfig {
	e.endpoint = ep
	return e
}

// WithFrom returns a copy with the given sender.
func (e EmailConfig) WithFrom(from string) EmailConfig {
	e.from = from
	return e
}

// WithNotifyEmail returns a copy with the given operator address.
func (e EmailConfig) WithNotifyEmail(addr string) EmailConfig {
	e.notifyEmail = addr
	return e
}

// PaymentConfig configures the hosted payment provider.
type PaymentConfig struct {
	endpoint            Endpoint
	webhookSecret       string
	webhookTolerance    time.Duration
	subscriptionPriceID string
	earlyAccessPriceID  string
	earlyAccessAmount   int64
}

// NewPaymentConfig creates a PaymentConfig with defaults.
func NewPaymentConfig() PaymentConfig {
	return PaymentConfig{
		endpoint:          NewEndpoint(DefaultPaymentBaseURL),
		webhookTolerance:  DefaultWebhookTolerance,
		earlyAccessAmount: DefaultEarlyAccessAmount,
	}
}

// Endpoint returns the API endpoint.
func (p PaymentConfig) Endpoint() Endpoint { return p.endpoint }

// WebhookSecret returns the webhook signing secret.
func (p PaymentConfig) WebhookSecret() string { return p.webhookSecret }

// WebhookTolerance returns the allowed signature age.
func (p PaymentConfig) WebhookTolerance() time.Duration { return p.webhookTolerance }

// SubscriptionPriceID returns the recurring price identifier.
func (p PaymentConfig) SubscriptionPriceID() string { return p.subscriptionPriceID }

// EarlyAccessPriceID returns the one-time price identifier.
func (p PaymentConfig) EarlyAccessPriceID() string { return p.earlyAccessPriceID }

// EarlyAccessAmount returns the early-access price in cents.
func (p PaymentConfig) EarlyAccessAmount() int64 { return p.earlyAccessAmount }

// WithEndpoint returns a copy with the given endpoint.
func (p PaymentConfig) WithEndpoint(ep Endpoint) PaymentConfig {
	p.endpoint = ep
	return p
}

// WithWebhookSecret returns a copy with the given secret.
func (p PaymentConfig) WithWebhookSecret(secret string) PaymentConfig {
	p.webhookSecret = secret
	return p
}

// WithWebhookTolerance returns a copy with the given tolerance.
func (p PaymentConfig) WithWebhookTolerance(d time.Duration) PaymentConfig {
	p.webhookTolerance = d
	return p
}

// WithPrices returns a copy with the given price identifiers.
func (p PaymentConfig) WithPrices(subscription, earlyAccess string) PaymentConfig {
	p.subscriptionPriceID = subscription
	p.earlyAccessPriceID = earlyAccess
	return p
}

// WithEarlyAccessAmount returns a copy with the given amount in cents.
func (p PaymentConfig) WithEarlyAccessAmount(cents int64) PaymentConfig {
	p.earlyAccessAmount = cents
	return p
}

// RateLimitConfig configures request throttling on public endpoints.
type RateLimitConfig struct {
	redisURL string
	requests int
	window   time.Duration
}

// NewRateLimitConfig creates a RateLimitConfig with defaults.
func NewRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		requests: DefaultRateLimitRequests,
		window:   DefaultRateLimitWindow,
	}
}

// RedisURL returns the Redis connection URL; empty disables limiting.
func (r RateLimitConfig) RedisURL() string { return r.redisURL }

// Requests returns the allowed requests per window.
func (r RateLimitConfig) Requests() int { return r.requests }

// Window returns the fixed window length.
func (r RateLimitConfig) Window() time.Duration { return r.window }

// Enabled returns true when a Redis URL is configured.
func (r RateLimitConfig) Enabled() bool { return r.redisURL != "" }

// WithRedisURL returns a copy with the given Redis URL.
func (r RateLimitConfig) WithRedisURL(url string) RateLimitConfig {
	r.redisURL = url
	return r
}

// WithLimit returns a copy with the given quota.
func (r RateLimitConfig) WithLimit(requests int, window time.Duration) RateLimitConfig {
	if requests > 0 {
		r.requests = requests
	}
	if window > 0 {
		r.window = window
	}
	return r
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host             string
	port             int
	dataDir          string
	dbURL            string
	logLevel         string
	logFormat        LogFormat
	publicURL        string
	corsOrigins      []string
	inviteOnly       bool
	workerCount      int
	workerPollPeriod time.Duration
	requestTimeout   time.Duration
	auth             AuthConfig
	email            EmailConfig
	payment          PaymentConfig
	analytics        Endpoint
	rateLimit        RateLimitConfig
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDirName
	}
	return filepath.Join(home, DefaultDataDirName)
}

// DefaultLogger returns the default slog logger for library consumers.
func DefaultLogger() *slog.Logger {
	return slog.Default()
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:             DefaultHost,
		port:             DefaultPort,
		dataDir:          dataDir,
		dbURL:            sqliteURL(dataDir),
		logLevel:         DefaultLogLevel,
		logFormat:        LogFormatPretty,
		publicURL:        DefaultPublicURL,
		corsOrigins:      []string{},
		workerCount:      DefaultWorkerCount,
		workerPollPeriod: DefaultWorkerPollPeriod,
		requestTimeout:   DefaultRequestTimeout,
		auth:             NewAuthConfig(),
		email:            NewEmailConfig(),
		payment:          NewPaymentConfig(),
		analytics:        NewEndpoint(DefaultAnalyticsBaseURL),
		rateLimit:        NewRateLimitConfig(),
	}
}

func sqliteURL(dataDir string) string {
	return "sqlite:///" + filepath.Join(dataDir, DefaultDatabaseFilename)
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// PublicURL returns the base URL of the customer-facing site, used in emails
// and checkout redirects.
func (c AppConfig) PublicURL() string { return c.publicURL }

// CORSOrigins returns a copy of the allowed browser origins.
func (c AppConfig) CORSOrigins() []string {
	result := make([]string, len(c.corsOrigins))
	copy(result, c.corsOrigins)
	return result
}

// InviteOnly reports whether signup requires an invite code.
func (c AppConfig) InviteOnly() bool { return c.inviteOnly }

// WorkerCount returns the number of queue workers.
func (c AppConfig) WorkerCount() int { return c.workerCount }

// WorkerPollPeriod returns how often idle workers poll the queue.
func (c AppConfig) WorkerPollPeriod() time.Duration { return c.workerPollPeriod }

// RequestTimeout returns how long an API request may run before it is
// answered with 504.
func (c AppConfig) RequestTimeout() time.Duration { return c.requestTimeout }

// Auth returns the auth configuration.
func (c AppConfig) Auth() AuthConfig { return c.auth }

// Email returns the email configuration.
func (c AppConfig) Email() EmailConfig { return c.email }

// Payment returns the payment configuration.
func (c AppConfig) Payment() PaymentConfig { return c.payment }

// Analytics returns the analytics endpoint.
func (c AppConfig) Analytics() Endpoint { return c.analytics }

// RateLimit returns the rate limit configuration.
func (c AppConfig) RateLimit() RateLimitConfig { return c.rateLimit }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
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

// WithDataDir sets the data directory. The default SQLite URL follows it.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		if c.dbURL == sqliteURL(c.dataDir) {
			c.dbURL = sqliteURL(dir)
		}
		c.dataDir = dir
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

// WithPublicURL sets the public site URL.
func WithPublicURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.publicURL = strings.TrimRight(url, "/") }
}

// WithCORSOrigins sets the allowed browser origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithInviteOnly toggles invite-only signup.
func WithInviteOnly(enabled bool) AppConfigOption {
	return func(c *AppConfig) { c.inviteOnly = enabled }
}

// WithWorkerCount sets the number of queue workers.
func WithWorkerCount(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithWorkerPollPeriod sets the idle poll period.
func WithWorkerPollPeriod(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.workerPollPeriod = d
		}
	}
}

// WithRequestTimeout sets the API request timeout.
func WithRequestTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithAuthConfig sets the auth configuration.
func WithAuthConfig(a AuthConfig) AppConfigOption {
	return func(c *AppConfig) { c.auth = a }
}

// WithEmailConfig sets the email configuration.
func WithEmailConfig(e EmailConfig) AppConfigOption {
	return func(c *AppConfig) { c.email = e }
}

// WithPaymentConfig sets the payment configuration.
func WithPaymentConfig(p PaymentConfig) AppConfigOption {
	return func(c *AppConfig) { c.payment = p }
}

// WithAnalytics sets the analytics endpoint.
func WithAnalytics(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.analytics = e }
}

// WithRateLimitConfig sets the rate limit configuration.
func WithRateLimitConfig(r RateLimitConfig) AppConfigOption {
	return func(c *AppConfig) { c.rateLimit = r }
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
// Secrets are reported only as configured or not.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("public_url", c.publicURL),
		slog.Int("cors_origins", len(c.corsOrigins)),
		slog.Bool("invite_only", c.inviteOnly),
		slog.Int("admin_emails", len(c.auth.adminEmails)),
		slog.Bool("dev_token_secret", c.auth.UsesDevelopmentSecret()),
		slog.Bool("email_configured", c.email.endpoint.IsConfigured()),
		slog.Bool("payments_configured", c.payment.endpoint.IsConfigured()),
		slog.Bool("webhook_secret_configured", c.payment.webhookSecret != ""),
		slog.Bool("analytics_configured", c.analytics.IsConfigured()),
		slog.Bool("rate_limit_enabled", c.rateLimit.Enabled()),
		slog.Int("worker_count", c.workerCount),
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

// ParseList parses a comma-separated string into trimmed, non-empty values.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
