package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/infrastructure/auth"
	"github.com/reviewfunnel/funnel/infrastructure/persistence"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/database"
	"github.com/reviewfunnel/funnel/internal/log"
	"github.com/reviewfunnel/funnel/internal/testdb"
)

const testPublicURL = "https://app.example.com"

type testEnv struct {
	db database.Database

	users      persistence.UserStore
	resets     persistence.ResetStore
	businesses persistence.BusinessStore
	templates  persistence.TemplateStore
	reviewRows persistence.ReviewStore
	feedback   persistence.FeedbackStore
	leadRows   persistence.LeadStore
	invites    persistence.InviteStore
	signups    persistence.SignupStore
	events     persistence.EventStore
	tasks      persistence.TaskStore

	gateway  *fakeGateway
	verifier *fakeVerifier

	queue       *Queue
	auth        *Auth
	signup      *Signup
	business    *Businesses
	reviews     *Reviews
	leads       *Leads
	inviteCodes *Invites
	earlyAccess *EarlyAccess
	billing     *Billing
}

type envOption func(*envSettings)

type envSettings struct {
	inviteOnly bool
}

func withInviteOnly() envOption {
	return func(s *envSettings) { s.inviteOnly = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	var settings envSettings
	for _, opt := range opts {
		opt(&settings)
	}

	db := testdb.New(t)
	logger := log.Discard()
	env := &testEnv{
		db:         db,
		users:      persistence.NewUserStore(db),
		resets:     persistence.NewResetStore(db),
		businesses: persistence.NewBusinessStore(db),
		templates:  persistence.NewTemplateStore(db),
		reviewRows: persistence.NewReviewStore(db),
		feedback:   persistence.NewFeedbackStore(db),
		leadRows:   persistence.NewLeadStore(db),
		invites:    persistence.NewInviteStore(db),
		signups:    persistence.NewSignupStore(db),
		events:     persistence.NewEventStore(db),
		tasks:      persistence.NewTaskStore(db),
		gateway:    &fakeGateway{},
		verifier:   &fakeVerifier{events: map[string]billing.Event{}},
	}

	tx := database.NewTransactor(db)
	hasher := plainHasher{}
	authCfg := config.NewAuthConfig().WithAdminEmails([]string{"ops@example.com"})
	payCfg := config.NewPaymentConfig().WithPrices("price_sub", "")

	env.queue = NewQueue(env.tasks, logger)
	env.auth = NewAuth(tx, env.users, env.resets, auth.NewJWTIssuer("test-secret-that-is-long-enough-0001", time.Hour), hasher, env.queue, authCfg, testPublicURL, logger)
	env.signup = NewSignup(tx, env.users, env.businesses, env.templates, env.invites, env.leadRows, hasher, env.auth, env.queue, settings.inviteOnly, logger)
	env.business = NewBusinesses(tx, env.businesses, env.templates, env.reviewRows, env.feedback, env.users, hasher, env.auth, logger)
	env.reviews = NewReviews(env.businesses, env.templates, env.reviewRows, env.feedback, env.queue, logger)
	env.leads = NewLeads(env.leadRows, env.queue, logger)
	env.inviteCodes = NewInvites(env.invites, logger)
	env.earlyAccess = NewEarlyAccess(env.signups, env.gateway, payCfg, testPublicURL, logger)
	env.billing = NewBilling(tx, env.gateway, env.verifier, env.events, env.businesses, env.signups, env.queue, payCfg, testPublicURL, logger)
	return env
}

// register signs up an owner with a default password.
func (e *testEnv) register(t *testing.T, email, businessName string) SignupResult {
	t.Helper()
	result, err := e.signup.Register(context.Background(), SignupParams{
		Email:        email,
		Password:     "password123",
		BusinessName: businessName,
	})
	require.NoError(t, err)
	return result
}

// pendingTasks drains the queue and returns what it held in dequeue order.
func (e *testEnv) pendingTasks(t *testing.T) []task.Task {
	t.Helper()
	var tasks []task.Task
	for {
		tk, ok, err := e.tasks.Dequeue(context.Background())
		require.NoError(t, err)
		if !ok {
			return tasks
		}
		tasks = append(tasks, tk)
	}
}

// pendingOperations drains the queue and returns the operations it held.
func (e *testEnv) pendingOperations(t *testing.T) []task.Operation {
	t.Helper()
	var ops []task.Operation
	for _, tk := range e.pendingTasks(t) {
		ops = append(ops, tk.Operation())
	}
	return ops
}

// plainHasher stands in for bcrypt, which is slow on purpose.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Compare(hash, password string) error {
	if hash != "plain:"+password {
		return fmt.Errorf("%w: password mismatch", domain.ErrUnauthorized)
	}
	return nil
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []billing.CheckoutRequest
	err      error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (billing.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return billing.CheckoutSession{}, g.err
	}
	g.requests = append(g.requests, req)
	id := fmt.Sprintf("cs_test_%d", len(g.requests))
	return billing.CheckoutSession{ID: id, URL: "https://checkout.example.com/" + id}, nil
}

func (g *fakeGateway) last() billing.CheckoutRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

// fakeVerifier accepts signatures registered with sign.
type fakeVerifier struct {
	events map[string]billing.Event
}

func (v *fakeVerifier) sign(e billing.Event) string {
	sig := "sig-" + e.ID
	v.events[sig] = e
	return sig
}

func (v *fakeVerifier) Verify(_ []byte, signature string, _ time.Time) (billing.Event, error) {
	e, ok := v.events[signature]
	if !ok || strings.TrimSpace(signature) == "" {
		return billing.Event{}, billing.ErrInvalidSignature
	}
	return e, nil
}

var errBoom = errors.New("boom")
