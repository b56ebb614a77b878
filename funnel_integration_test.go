package funnel_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/domain/review"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/infrastructure/auth"
	"github.com/reviewfunnel/funnel/internal/log"
)

const testPollPeriod = 20 * time.Millisecond

type inbox struct {
	mu   sync.Mutex
	sent []domainservice.Email
}

func (i *inbox) Send(_ context.Context, e domainservice.Email) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.sent = append(i.sent, e)
	return "msg", nil
}

func (i *inbox) recipients() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]string, 0, len(i.sent))
	for _, e := range i.sent {
		out = append(out, e.To()...)
	}
	return out
}

func newFileClient(t *testing.T, mail *inbox) *funnel.Client {
	t.Helper()
	client, err := funnel.New(
		funnel.WithSQLite(filepath.Join(t.TempDir(), "funnel.db")),
		funnel.WithLogger(log.Discard()),
		funnel.WithMailer(mail),
		funnel.WithPasswordHasher(auth.NewBcryptHasherWithCost(bcrypt.MinCost)),
		funnel.WithWorkerPollPeriod(testPollPeriod),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// waitForTasks polls until the queue has stayed empty for a few periods, so
// a task that enqueues a follow-up is not mistaken for the end of the work.
func waitForTasks(ctx context.Context, t *testing.T, client *funnel.Client, timeout time.Duration) {
	t.Helper()

	const stableRequired = 4

	deadline := time.Now().Add(timeout)
	stable := 0
	for time.Now().Before(deadline) {
		n, err := client.Tasks.Count(ctx)
		require.NoError(t, err)
		if n == 0 {
			stable++
			if stable >= stableRequired {
				return
			}
		} else {
			stable = 0
		}
		time.Sleep(testPollPeriod)
	}

	n, _ := client.Tasks.Count(ctx)
	t.Fatalf("timeout waiting for tasks to complete, %d remaining", n)
}

func TestIntegration_ReviewFunnel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	mail := &inbox{}
	client := newFileClient(t, mail)
	ctx := context.Background()

	signup, err := client.Signup.Register(ctx, service.SignupParams{
		Email:        "owner@example.com",
		Password:     "password123",
		BusinessName: "Corner Cafe",
	})
	require.NoError(t, err)
	slug := signup.Business.Slug()

	happy, err := client.Reviews.Rate(ctx, slug, 5)
	require.NoError(t, err)
	assert.Equal(t, review.RouteTemplates, happy.Route)
	assert.Len(t, happy.Templates, 3)

	unhappy, err := client.Reviews.Rate(ctx, slug, 2)
	require.NoError(t, err)
	assert.Equal(t, review.RouteFeedback, unhappy.Route)
	assert.Empty(t, unhappy.Templates)

	_, err = client.Reviews.SubmitFeedback(ctx, slug, service.FeedbackParams{
		Rating:  2,
		Message: "Coffee was cold",
		Email:   "guest@example.com",
	})
	require.NoError(t, err)

	waitForTasks(ctx, t, client, 10*time.Second)

	assert.Equal(t, []string{"owner@example.com", "owner@example.com"}, mail.recipients())

	summary, err := client.Reviews.Summary(ctx, signup.Business.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalReviews())
	assert.InDelta(t, 3.5, summary.AverageRating(), 0.001)
	assert.Equal(t, int64(1), summary.UnresolvedFeedback())
}

func TestIntegration_DataSurvivesReopen(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	t.Parallel()

	path := filepath.Join(t.TempDir(), "funnel.db")
	ctx := context.Background()

	first, err := funnel.New(funnel.WithSQLite(path), funnel.WithLogger(log.Discard()), funnel.WithoutWorker(),
		funnel.WithPasswordHasher(auth.NewBcryptHasherWithCost(bcrypt.MinCost)))
	require.NoError(t, err)
	signup, err := first.Signup.Register(ctx, service.SignupParams{
		Email:        "baker@example.com",
		Password:     "password123",
		BusinessName: "Main Street Bakery",
	})
	require.NoError(t, err)
	pending, err := first.Tasks.Count(ctx)
	require.NoError(t, err)
	assert.Positive(t, pending)
	require.NoError(t, first.Close())

	mail := &inbox{}
	second, err := funnel.New(funnel.WithSQLite(path), funnel.WithLogger(log.Discard()), funnel.WithoutWorker(),
		funnel.WithMailer(mail))
	require.NoError(t, err)
	defer func() { _ = second.Close() }()

	b, err := second.Businesses.BySlug(ctx, signup.Business.Slug())
	require.NoError(t, err)
	assert.Equal(t, "Main Street Bakery", b.Name())

	session, err := second.Auth.Login(ctx, "baker@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	ran, err := second.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, int(pending), ran)
	assert.Equal(t, []string{"baker@example.com"}, mail.recipients())
}
