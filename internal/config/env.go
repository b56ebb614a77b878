package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use an underscore delimiter (e.g. EMAIL_ENDPOINT_API_KEY).
type EnvConfig struct {
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.funnel
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/funnel.db
	DBURL string `envconfig:"DB_URL"`

	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PublicURL is the base URL of the customer-facing frontend.
	// Env: PUBLIC_URL (default: http://localhost:3000)
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:3000"`

	// CORSAllowedOrigins is a comma-separated list of browser origins.
	// Env: CORS_ALLOWED_ORIGINS
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// AdminEmails is a comma-separated allow-list of operator emails.
	// Env: ADMIN_EMAILS
	AdminEmails string `envconfig:"ADMIN_EMAILS"`

	// InviteOnly requires an invite code at signup.
	// Env: INVITE_ONLY (default: false)
	InviteOnly bool `envconfig:"INVITE_ONLY" default:"false"`

	// Env: WORKER_COUNT (default: 1)
	WorkerCount int `envconfig:"WORKER_COUNT" default:"1"`

	// WorkerPollInterval is how often an idle worker polls the queue.
	// Env: WORKER_POLL_INTERVAL (default: 1s)
	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"1s"`

	// RequestTimeout bounds each API request.
	// Env: REQUEST_TIMEOUT (default: 60s)
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`

	Auth      AuthEnv      `envconfig:"AUTH"`
	Email     EmailEnv     `envconfig:"EMAIL"`
	Payment   PaymentEnv   `envconfig:"PAYMENT"`
	Analytics EndpointEnv  `envconfig:"ANALYTICS_ENDPOINT"`
	RateLimit RateLimitEnv `envconfig:"RATE_LIMIT"`
}

// EndpointEnv holds environment configuration for an outbound API.
type EndpointEnv struct {
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the request timeout in seconds.
	// Env: *_TIMEOUT (default: 15)
	Timeout float64 `envconfig:"TIMEOUT" default:"15"`

	// Env: *_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`
}

// AuthEnv holds authentication configuration.
type AuthEnv struct {
	// JWTSecret signs bearer tokens.
	// Env: AUTH_JWT_SECRET
	JWTSecret string `envconfig:"JWT_SECRET"`

	// Env: AUTH_TOKEN_TTL (default: 168h)
	TokenTTL time.Duration `envconfig:"TOKEN_TTL" default:"168h"`

	// Env: AUTH_RESET_TOKEN_TTL (default: 1h)
	ResetTokenTTL time.Duration `envconfig:"RESET_TOKEN_TTL" default:"1h"`
}

// EmailEnv holds transactional email configuration.
type EmailEnv struct {
	Endpoint EndpointEnv `envconfig:"ENDPOINT"`

	// Env: EMAIL_FROM
	From string `envconfig:"FROM"`

	// NotifyAddress receives lead notifications.
	// Env: EMAIL_NOTIFY_ADDRESS
	NotifyAddress string `envconfig:"NOTIFY_ADDRESS"`
}

// PaymentEnv holds payment provider configuration.
type PaymentEnv struct {
	Endpoint EndpointEnv `envconfig:"ENDPOINT"`

	// Env: PAYMENT_WEBHOOK_SECRET
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`

	// WebhookTolerance is the allowed age of a webhook signature.
	// Env: PAYMENT_WEBHOOK_TOLERANCE (default: 5m)
	WebhookTolerance time.Duration `envconfig:"WEBHOOK_TOLERANCE" default:"5m"`

	// Env: PAYMENT_SUBSCRIPTION_PRICE_ID
	SubscriptionPriceID string `envconfig:"SUBSCRIPTION_PRICE_ID"`

	// Env: PAYMENT_EARLY_ACCESS_PRICE_ID
	EarlyAccessPriceID string `envconfig:"EARLY_ACCESS_PRICE_ID"`

	// EarlyAccessAmount is the one-time price in cents.
	// Env: PAYMENT_EARLY_ACCESS_AMOUNT (default: 4900)
	EarlyAccessAmount int64 `envconfig:"EARLY_ACCESS_AMOUNT" default:"4900"`
}

// RateLimitEnv holds rate limiting configuration.
type RateLimitEnv struct {
	// RedisURL enables limiting when set, e.g. redis://localhost:6379/0.
	// Env: RATE_LIMIT_REDIS_URL
	RedisURL string `envconfig:"REDIS_URL"`

	// Env: RATE_LIMIT_REQUESTS (default: 30)
	Requests int `envconfig:"REQUESTS" default:"30"`

	// Env: RATE_LIMIT_WINDOW (default: 1m)
	Window time.Duration `envconfig:"WINDOW" default:"1m"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix("")
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "FUNNEL" would require FUNNEL_DATA_DIR instead of DATA_DIR.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()
	var opts []AppConfigOption

	if e.Host != "" {
		opts = append(opts, WithHost(e.Host))
	}
	if e.Port != 0 {
		opts = append(opts, WithPort(e.Port))
	}
	if e.DataDir != "" {
		opts = append(opts, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		opts = append(opts, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		opts = append(opts, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		opts = append(opts, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.PublicURL != "" {
		opts = append(opts, WithPublicURL(e.PublicURL))
	}
	opts = append(opts,
		WithCORSOrigins(ParseList(e.CORSAllowedOrigins)),
		WithInviteOnly(e.InviteOnly),
		WithWorkerCount(e.WorkerCount),
		WithWorkerPollPeriod(e.WorkerPollInterval),
		WithRequestTimeout(e.RequestTimeout),
		WithAuthConfig(e.Auth.toAuthConfig(cfg.Auth()).WithAdminEmails(ParseList(e.AdminEmails))),
		WithEmailConfig(e.Email.toEmailConfig(cfg.Email())),
		WithPaymentConfig(e.Payment.toPaymentConfig(cfg.Payment())),
		WithAnalytics(e.Analytics.apply(cfg.Analytics())),
		WithRateLimitConfig(cfg.RateLimit().WithRedisURL(e.RateLimit.RedisURL).WithLimit(e.RateLimit.Requests, e.RateLimit.Window)),
	)

	return cfg.Apply(opts...)
}

// IsConfigured returns true if the endpoint has an API key.
func (e EndpointEnv) IsConfigured() bool {
	return e.APIKey != ""
}

// apply overlays the set fields onto base.
func (e EndpointEnv) apply(base Endpoint) Endpoint {
	var opts []EndpointOption
	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}
	if e.Timeout > 0 {
		opts = append(opts, WithTimeout(time.Duration(e.Timeout*float64(time.Second))))
	}
	if e.MaxRetries >= 0 {
		opts = append(opts, WithMaxRetries(e.MaxRetries))
	}
	return base.With(opts...)
}

func (a AuthEnv) toAuthConfig(base AuthConfig) AuthConfig {
	if a.JWTSecret != "" {
		base = base.WithTokenSecret(a.JWTSecret)
	}
	if a.TokenTTL > 0 {
		base = base.WithTokenTTL(a.TokenTTL)
	}
	if a.ResetTokenTTL > 0 {
		base = base.WithResetTokenTTL(a.ResetTokenTTL)
	}
	return base
}

func (m EmailEnv) toEmailConfig(base EmailConfig) EmailConfig {
	base = base.WithEndpoint(m.Endpoint.apply(base.Endpoint()))
	if m.From != "" {
		base = base.WithFrom(m.From)
	}
	return base.WithNotifyEmail(m.NotifyAddress)
}

func (p PaymentEnv) toPaymentConfig(base PaymentConfig) PaymentConfig {
	base = base.WithEndpoint(p.Endpoint.apply(base.Endpoint())).
		WithWebhookSecret(p.WebhookSecret).
		WithPrices(p.SubscriptionPriceID, p.EarlyAccessPriceID)
	if p.WebhookTolerance > 0 {
		base = base.WithWebhookTolerance(p.WebhookTolerance)
	}
	if p.EarlyAccessAmount > 0 {
		base = base.WithEarlyAccessAmount(p.EarlyAccessAmount)
	}
	return base
}

func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
