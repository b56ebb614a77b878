// Package funnel is the review funnel backend as a library.
//
// A Client owns the database, the application services and the background
// worker that delivers queued emails and analytics events:
//
//	client, err := funnel.New(
//	    funnel.WithSQLite(".funnel/funnel.db"),
//	    funnel.WithConfig(cfg),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Signup.Register(ctx, service.SignupParams{
//	    Email:        "joe@example.com",
//	    Password:     "correct horse",
//	    BusinessName: "Joe's Auto Repair",
//	})
package funnel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/reviewfunnel/funnel/application/service"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/infrastructure/analytics"
	"github.com/reviewfunnel/funnel/infrastructure/auth"
	"github.com/reviewfunnel/funnel/infrastructure/email"
	"github.com/reviewfunnel/funnel/infrastructure/export"
	"github.com/reviewfunnel/funnel/infrastructure/payment"
	"github.com/reviewfunnel/funnel/infrastructure/persistence"
	"github.com/reviewfunnel/funnel/infrastructure/ratelimit"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/database"
)

// Client is the main entry point. Background workers start on creation
// unless WithoutWorker is given.
//
// Access use cases via struct fields:
//
//	client.Reviews.Rate(ctx, "joe-s-auto-repair", 5)
//	client.Leads.List(ctx, service.LeadListParams{})
type Client struct {
	Auth        *service.Auth
	Signup      *service.Signup
	Businesses  *service.Businesses
	Reviews     *service.Reviews
	Leads       *service.Leads
	Invites     *service.Invites
	EarlyAccess *service.EarlyAccess
	Billing     *service.Billing
	Exports     *service.Exports
	Tasks       *service.Queue

	db       database.Database
	stores   stores
	registry *service.Registry
	workers  []*service.Worker
	limiter  domainservice.RateLimiter

	mailer    domainservice.Mailer
	analytics domainservice.Analytics
	renderer  *email.Renderer

	cfg     config.AppConfig
	closers []io.Closer
	logger  *slog.Logger
	closed  atomic.Bool
	mu      sync.Mutex
}

// stores are the persistence stores shared by services and handlers.
type stores struct {
	users      persistence.UserStore
	resets     persistence.ResetStore
	businesses persistence.BusinessStore
	templates  persistence.TemplateStore
	reviews    persistence.ReviewStore
	feedback   persistence.FeedbackStore
	leads      persistence.LeadStore
	invites    persistence.InviteStore
	signups    persistence.SignupStore
	events     persistence.EventStore
	tasks      persistence.TaskStore
}

func newStores(db database.Database) stores {
	return stores{
		users:      persistence.NewUserStore(db),
		resets:     persistence.NewResetStore(db),
		businesses: persistence.NewBusinessStore(db),
		templates:  persistence.NewTemplateStore(db),
		reviews:    persistence.NewReviewStore(db),
		feedback:   persistence.NewFeedbackStore(db),
		leads:      persistence.NewLeadStore(db),
		invites:    persistence.NewInviteStore(db),
		signups:    persistence.NewSignupStore(db),
		events:     persistence.NewEventStore(db),
		tasks:      persistence.NewTaskStore(db),
	}
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cc := newClientConfig()
	for _, opt := range opts {
		opt(cc)
	}
	cfg := cc.appConfig

	logger := cc.logger
	if logger == nil {
		logger = config.DefaultLogger()
	}

	dbURL := cc.dbURL
	if dbURL == "" {
		dbURL = cfg.DBURL()
		if strings.HasPrefix(dbURL, "sqlite:///") {
			if err := cfg.EnsureDataDir(); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
	}
	if dbURL == "" {
		return nil, ErrNoDatabase
	}
	if err := cfg.Auth().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakSecret, err)
	}
	if cfg.Auth().UsesDevelopmentSecret() {
		logger.Warn("using the development token secret, set AUTH_JWT_SECRET in production")
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), db.Close())
	}
	if err := persistence.ValidateSchema(db); err != nil {
		return nil, errors.Join(fmt.Errorf("validate schema: %w", err), db.Close())
	}

	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("email templates: %w", err), db.Close())
	}

	closers := cc.closers
	limiter := cc.limiter
	if limiter == nil && cfg.RateLimit().Enabled() {
		redisClient, err := ratelimit.NewClient(cfg.RateLimit().RedisURL())
		if err != nil {
			return nil, errors.Join(fmt.Errorf("rate limiter: %w", err), db.Close())
		}
		l := ratelimit.NewLimiter(redisClient, cfg.RateLimit().Requests(), cfg.RateLimit().Window())
		if err := l.Ping(ctx); err != nil {
			logger.Warn("rate limiter redis unreachable, requests will be allowed until it recovers",
				slog.String("error", err.Error()))
		}
		limiter = l
		closers = append(closers, l)
	}

	mailer := cc.mailer
	if mailer == nil {
		mailer = email.New(cfg.Email(), logger)
	}
	tracker := cc.analytics
	if tracker == nil {
		tracker = analytics.New(cfg.Analytics(), logger)
	}
	gateway := cc.gateway
	if gateway == nil {
		gateway = payment.NewStripeGateway(cfg.Payment(), logger)
	}
	verifier := cc.verifier
	if verifier == nil {
		verifier = payment.NewWebhookVerifier(cfg.Payment().WebhookSecret(), cfg.Payment().WebhookTolerance())
	}
	hasher := cc.hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher()
	}
	tokens := auth.NewJWTIssuer(cfg.Auth().TokenSecret(), cfg.Auth().TokenTTL())

	s := newStores(db)
	tx := database.NewTransactor(db)
	queue := service.NewQueue(s.tasks, logger)
	publicURL := cfg.PublicURL()

	client := &Client{
		db:        db,
		stores:    s,
		registry:  service.NewRegistry(),
		limiter:   limiter,
		mailer:    mailer,
		analytics: tracker,
		renderer:  renderer,
		cfg:       cfg,
		closers:   closers,
		logger:    logger,
	}

	client.Tasks = queue
	client.Auth = service.NewAuth(tx, s.users, s.resets, tokens, hasher, queue, cfg.Auth(), publicURL, logger)
	client.Signup = service.NewSignup(tx, s.users, s.businesses, s.templates, s.invites, s.leads, hasher, client.Auth, queue, cfg.InviteOnly(), logger)
	client.Businesses = service.NewBusinesses(tx, s.businesses, s.templates, s.reviews, s.feedback, s.users, hasher, client.Auth, logger)
	client.Reviews = service.NewReviews(s.businesses, s.templates, s.reviews, s.feedback, queue, logger)
	client.Leads = service.NewLeads(s.leads, queue, logger)
	client.Invites = service.NewInvites(s.invites, logger)
	client.EarlyAccess = service.NewEarlyAccess(s.signups, gateway, cfg.Payment(), publicURL, logger)
	client.Billing = service.NewBilling(tx, gateway, verifier, s.events, s.businesses, s.signups, queue, cfg.Payment(), publicURL, logger)
	client.Exports = service.NewExports(s.leads, s.signups, s.businesses, export.NewXLSXWriter(), logger)

	client.registerHandlers()

	if cc.startWorkers {
		for i := 0; i < cfg.WorkerCount(); i++ {
			w := service.NewWorker(s.tasks, client.registry, logger.With(slog.Int("worker", i))).
				WithPollPeriod(cfg.WorkerPollPeriod())
			w.Start(ctx)
			client.workers = append(client.workers, w)
		}
	}

	return client, nil
}

// Close stops the workers and releases every resource.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, w := range c.workers {
		w.Stop()
	}

	var errs []error
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}

	c.logger.Info("funnel client closed")
	return errors.Join(errs...)
}

// Drain runs queued tasks on the calling goroutine until the queue is empty.
// It returns how many tasks ran.
func (c *Client) Drain(ctx context.Context) (int, error) {
	w := service.NewWorker(c.stores.tasks, c.registry, c.logger)
	return w.Drain(ctx)
}

// Ping checks the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.db.Ping(ctx)
}

// RateLimiter returns the configured limiter, or nil when rate limiting is
// disabled.
func (c *Client) RateLimiter() domainservice.RateLimiter {
	return c.limiter
}

// Config returns the configuration the client was built with.
func (c *Client) Config() config.AppConfig {
	return c.cfg
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Migrate opens dbURL, applies the schema and closes the connection.
func Migrate(ctx context.Context, dbURL string) error {
	db, err := database.NewDatabase(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := persistence.AutoMigrate(db); err != nil {
		return errors.Join(fmt.Errorf("auto migrate: %w", err), db.Close())
	}
	return db.Close()
}
