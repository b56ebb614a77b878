package handler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/review"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/infrastructure/email"
	"github.com/reviewfunnel/funnel/infrastructure/persistence"
	"github.com/reviewfunnel/funnel/internal/log"
	"github.com/reviewfunnel/funnel/internal/testdb"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []domainservice.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, e domainservice.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, e)
	return "msg-1", nil
}

func (m *fakeMailer) only(t *testing.T) domainservice.Email {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.sent, 1)
	return m.sent[0]
}

type fakeAnalytics struct {
	events []domainservice.AnalyticsEvent
}

func (a *fakeAnalytics) Capture(_ context.Context, e domainservice.AnalyticsEvent) error {
	a.events = append(a.events, e)
	return nil
}

type fixture struct {
	stores    Stores
	mailer    *fakeMailer
	analytics *fakeAnalytics
	registry  *service.Registry
	owner     account.User
	business  business.Business
}

func newFixture(t *testing.T, notifyEmail string) *fixture {
	t.Helper()
	db := testdb.New(t)
	ctx := context.Background()

	stores := Stores{
		Users:      persistence.NewUserStore(db),
		Businesses: persistence.NewBusinessStore(db),
		Feedback:   persistence.NewFeedbackStore(db),
		Leads:      persistence.NewLeadStore(db),
		Signups:    persistence.NewSignupStore(db),
	}

	user, err := account.NewUser("owner@example.com", "hash")
	require.NoError(t, err)
	user, err = stores.Users.Save(ctx, user)
	require.NoError(t, err)

	b, err := business.NewBusiness(user.ID(), "Joe's Auto")
	require.NoError(t, err)
	b, err = stores.Businesses.Save(ctx, b.WithSlug("joe-s-auto"))
	require.NoError(t, err)

	renderer, err := email.NewRenderer()
	require.NoError(t, err)

	f := &fixture{
		stores:    stores,
		mailer:    &fakeMailer{},
		analytics: &fakeAnalytics{},
		registry:  service.NewRegistry(),
		owner:     user,
		business:  b,
	}
	Register(f.registry, Dependencies{
		Stores:        stores,
		Renderer:      renderer,
		Mailer:        f.mailer,
		Analytics:     f.analytics,
		PublicURL:     "https://app.example.com/",
		NotifyEmail:   notifyEmail,
		ResetTokenTTL: time.Hour,
		Logger:        log.Discard(),
	})
	return f
}

// run executes t the way the worker does, with the payload round-tripped
// through JSON.
func (f *fixture) run(t *testing.T, tk task.Task) error {
	t.Helper()
	raw, err := json.Marshal(tk.Payload())
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))

	h, ok := f.registry.Handler(tk.Operation())
	require.True(t, ok, "no handler for %s", tk.Operation())
	return h.Execute(context.Background(), payload)
}

func TestRegister_CoversEveryOperation(t *testing.T) {
	f := newFixture(t, "")

	for _, op := range task.EmailOperations() {
		assert.True(t, f.registry.HasHandler(op), op)
	}
	assert.True(t, f.registry.HasHandler(task.OperationCaptureAnalyticsEvent))
}

func TestWelcome(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(t, task.NewWelcomeEmail(f.owner.ID(), f.business.ID())))

	sent := f.mailer.only(t)
	assert.Equal(t, []string{"owner@example.com"}, sent.To())
	assert.Equal(t, "Welcome to Review Funnel, Joe's Auto", sent.Subject())
	assert.Contains(t, sent.Text(), "https://app.example.com/r/joe-s-auto")
	assert.Equal(t, string(email.TemplateWelcome), sent.Tag())
}

func TestWelcome_DeletedBusinessIsSkipped(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(t, task.NewWelcomeEmail(f.owner.ID(), 9999)))

	assert.Empty(t, f.mailer.sent)
}

func TestFeedbackAlert(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	contact, err := review.NewContact("Sam", "sam@example.com", "")
	require.NoError(t, err)
	fb, err := review.NewFeedback(f.business.ID(), review.Rating(2), "Waited an hour", contact)
	require.NoError(t, err)
	fb, err = f.stores.Feedback.Save(ctx, fb)
	require.NoError(t, err)

	require.NoError(t, f.run(t, task.NewFeedbackAlert(fb.ID())))

	sent := f.mailer.only(t)
	assert.Equal(t, []string{"owner@example.com"}, sent.To())
	assert.Equal(t, "New feedback for Joe's Auto", sent.Subject())
	assert.Contains(t, sent.Text(), "2-star")
	assert.Contains(t, sent.Text(), "Waited an hour")
	assert.Contains(t, sent.Text(), "sam@example.com")
}

func TestFeedbackAlert_RespectsOwnerSetting(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	_, err := f.stores.Businesses.Save(ctx, f.business.WithNotifyOnFeedback(false))
	require.NoError(t, err)
	fb, err := review.NewFeedback(f.business.ID(), review.Rating(1), "Bad", review.Contact{})
	require.NoError(t, err)
	fb, err = f.stores.Feedback.Save(ctx, fb)
	require.NoError(t, err)

	require.NoError(t, f.run(t, task.NewFeedbackAlert(fb.ID())))

	assert.Empty(t, f.mailer.sent)
}

func TestPaymentConfirmation(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(t, task.NewPaymentConfirmation(f.business.ID(), "evt_1")))

	sent := f.mailer.only(t)
	assert.Equal(t, []string{"owner@example.com"}, sent.To())
	assert.Contains(t, sent.Text(), "Joe's Auto")
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(t, task.NewPasswordResetEmail(f.owner.ID(), "owner@example.com", "https://app.example.com/reset?token=abc")))

	sent := f.mailer.only(t)
	assert.Equal(t, "Reset your Review Funnel password", sent.Subject())
	assert.Contains(t, sent.Text(), "https://app.example.com/reset?token=abc")
	assert.Contains(t, sent.Text(), "1 hour")
}

func TestEarlyAccess(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	signup, err := lead.NewEarlyAccessSignup("pat@example.com", "Pat", "Pat's Pies")
	require.NoError(t, err)
	signup, err = f.stores.Signups.Save(ctx, signup.MarkPaid(4900, time.Now()))
	require.NoError(t, err)

	require.NoError(t, f.run(t, task.NewEarlyAccessConfirmation(signup.ID())))

	sent := f.mailer.only(t)
	assert.Equal(t, []string{"pat@example.com"}, sent.To())
	assert.Contains(t, sent.Text(), "Pat")
	assert.Contains(t, sent.Text(), "$49.00")
}

func TestLeadNotification(t *testing.T) {
	f := newFixture(t, "ops@example.com")
	ctx := context.Background()
	l, err := lead.NewLead("prospect@example.com", lead.Details{Name: "Lee", Source: "landing"})
	require.NoError(t, err)
	l, err = f.stores.Leads.Save(ctx, l)
	require.NoError(t, err)

	require.NoError(t, f.run(t, task.NewLeadNotification(l.ID())))

	sent := f.mailer.only(t)
	assert.Equal(t, []string{"ops@example.com"}, sent.To())
	assert.Equal(t, "New lead: prospect@example.com", sent.Subject())
}

func TestLeadNotification_DisabledWithoutAddress(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(t, task.NewLeadNotification(1)))

	assert.Empty(t, f.mailer.sent)
}

func TestSendFailureIsReturned(t *testing.T) {
	f := newFixture(t, "")
	f.mailer.err = errors.New("provider down")

	err := f.run(t, task.NewPaymentConfirmation(f.business.ID(), "evt_2"))

	assert.ErrorContains(t, err, "provider down")
}

func TestCapture(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(t, task.NewAnalyticsCapture("lead_captured", "lead:3", map[string]any{"source": "landing"})))

	require.Len(t, f.analytics.events, 1)
	assert.Equal(t, domainservice.AnalyticsEvent{
		Name:       "lead_captured",
		DistinctID: "lead:3",
		Properties: map[string]any{"source": "landing"},
	}, f.analytics.events[0])
}

func TestMissingPayloadKey(t *testing.T) {
	f := newFixture(t, "")
	h, _ := f.registry.Handler(task.OperationWelcomeEmail)

	err := h.Execute(context.Background(), map[string]any{})

	assert.ErrorIs(t, err, task.ErrMissingPayloadKey)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$49.00", formatCents(4900))
	assert.Equal(t, "$0.05", formatCents(5))
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "2 days", humanDuration(48*time.Hour))
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
}
