package funnel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reviewfunnel/funnel/application/service"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/infrastructure/auth"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/log"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []domainservice.Email
}

func (m *recordingMailer) Send(_ context.Context, e domainservice.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return "id", nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type recordingAnalytics struct {
	mu     sync.Mutex
	events []string
}

func (a *recordingAnalytics) Capture(_ context.Context, e domainservice.AnalyticsEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e.Name)
	return nil
}

func newTestClient(t *testing.T, opts ...Option) (*Client, *recordingMailer, *recordingAnalytics) {
	t.Helper()
	mailer := &recordingMailer{}
	tracker := &recordingAnalytics{}
	base := []Option{
		WithSQLite(":memory:"),
		WithLogger(log.Discard()),
		WithMailer(mailer),
		WithAnalytics(tracker),
		WithPasswordHasher(auth.NewBcryptHasherWithCost(bcrypt.MinCost)),
	}
	client, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mailer, tracker
}

func TestNew_SignupDeliversQueuedNotifications(t *testing.T) {
	client, mailer, tracker := newTestClient(t, WithoutWorker())
	ctx := context.Background()

	result, err := client.Signup.Register(ctx, service.SignupParams{
		Email:        "joe@example.com",
		Password:     "password123",
		BusinessName: "Joe's Auto Repair!!",
	})
	require.NoError(t, err)
	assert.Equal(t, "joe-s-auto-repair", result.Business.Slug())
	assert.NotEmpty(t, result.Session.Token)

	principal, err := client.Auth.Authenticate(ctx, result.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Session.User.ID(), principal.UserID())

	ran, err := client.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
	assert.Equal(t, 1, mailer.count())
	assert.Equal(t, []string{"signup_completed"}, tracker.events)
}

func TestNew_WorkerDeliversInBackground(t *testing.T) {
	client, mailer, _ := newTestClient(t, WithWorkerPollPeriod(10*time.Millisecond))

	_, err := client.Signup.Register(context.Background(), service.SignupParams{
		Email:        "ann@example.com",
		Password:     "password123",
		BusinessName: "Ann's Bakery",
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return mailer.count() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestNew_RejectsWeakSecret(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(
		config.WithAuthConfig(config.NewAuthConfig().WithTokenSecret("short")),
	)

	_, err := New(WithSQLite(":memory:"), WithConfig(cfg), WithLogger(log.Discard()))

	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestNew_UnsupportedDatabase(t *testing.T) {
	_, err := New(WithPostgres("mysql://nope"), WithLogger(log.Discard()))

	assert.Error(t, err)
}

func TestClient_Close(t *testing.T) {
	client, err := New(WithSQLite(":memory:"), WithLogger(log.Discard()), WithoutWorker())
	require.NoError(t, err)

	require.NoError(t, client.Ping(context.Background()))
	assert.Nil(t, client.RateLimiter())
	require.NoError(t, client.Close())
	assert.ErrorIs(t, client.Close(), ErrClientClosed)
}

func TestMigrate(t *testing.T) {
	path := t.TempDir() + "/funnel.db"

	require.NoError(t, Migrate(context.Background(), "sqlite:///"+path))

	client, err := New(WithSQLite(path), WithLogger(log.Discard()), WithoutWorker())
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}
