package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/infrastructure/persistence"
	"github.com/reviewfunnel/funnel/internal/database"
	"github.com/reviewfunnel/funnel/internal/log"
)

func TestSignup_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.signup.Register(ctx, SignupParams{
		Email:        "  Joe@Example.COM ",
		Password:     "password123",
		BusinessName: "Joe's Auto Repair",
		Source:       "landing",
	})
	require.NoError(t, err)

	assert.Equal(t, "joe-s-auto-repair", result.Business.Slug())
	assert.Equal(t, "Joe's Auto Repair", result.Business.Name())
	assert.Equal(t, business.SubscriptionPending, result.Business.Subscription())
	assert.Equal(t, "joe@example.com", result.Session.User.Email())
	assert.NotEmpty(t, result.Session.Token)
	assert.Equal(t, result.Session.User.ID(), result.Business.OwnerID())

	templates, err := env.reviews.Templates(ctx, result.Business.ID())
	require.NoError(t, err)
	require.Len(t, templates, 3)
	assert.Contains(t, templates[0].Body(), "Joe's Auto Repair")

	assert.ElementsMatch(t,
		[]task.Operation{task.OperationWelcomeEmail, task.OperationCaptureAnalyticsEvent},
		env.pendingOperations(t),
	)
}

func TestSignup_Register_SlugCollisions(t *testing.T) {
	env := newTestEnv(t)

	first := env.register(t, "a@example.com", "Joe's Auto Repair")
	second := env.register(t, "b@example.com", "Joe's Auto-Repair!")
	third := env.register(t, "c@example.com", "joe s auto repair")

	assert.Equal(t, "joe-s-auto-repair", first.Business.Slug())
	assert.Equal(t, "joe-s-auto-repair-1", second.Business.Slug())
	assert.Equal(t, "joe-s-auto-repair-2", third.Business.Slug())
}

func TestSignup_Register_ReservedSlug(t *testing.T) {
	env := newTestEnv(t)

	result := env.register(t, "a@example.com", "Admin")

	assert.Equal(t, "admin-1", result.Business.Slug())
}

func TestSignup_Register_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "joe@example.com", "Joe's")

	_, err := env.signup.Register(ctx, SignupParams{
		Email:        "JOE@example.com",
		Password:     "password123",
		BusinessName: "Another",
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	count, err := env.businesses.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSignup_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := map[string]SignupParams{
		"bad email":      {Email: "nope", Password: "password123", BusinessName: "Biz"},
		"short password": {Email: "a@example.com", Password: "short", BusinessName: "Biz"},
		"no name":        {Email: "a@example.com", Password: "password123", BusinessName: "  "},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := env.signup.Register(ctx, params)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	count, err := env.users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

type failingTemplates struct {
	persistence.TemplateStore
}

func (failingTemplates) Upsert(context.Context, business.ReviewTemplate) (business.ReviewTemplate, error) {
	return business.ReviewTemplate{}, errBoom
}

func TestSignup_Register_RollsBackOnFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	code := generateInvite(t, env)

	signup := NewSignup(
		database.NewTransactor(env.db), env.users, env.businesses, failingTemplates{env.templates},
		env.invites, env.leadRows, plainHasher{}, env.auth, env.queue, false, log.Discard(),
	)
	_, err := signup.Register(ctx, SignupParams{
		Email:        "joe@example.com",
		Password:     "password123",
		BusinessName: "Joe's",
		InviteCode:   code.Code(),
	})
	require.ErrorIs(t, err, errBoom)

	users, err := env.users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, users)
	businesses, err := env.businesses.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, businesses)

	stored, err := env.invites.FindOne(ctx, repository.WithID(code.ID()))
	require.NoError(t, err)
	assert.Equal(t, lead.InviteUnused, stored.Status())
	assert.Empty(t, env.pendingOperations(t))
}

func generateInvite(t *testing.T, env *testEnv) lead.InviteCode {
	t.Helper()
	codes, err := env.inviteCodes.Generate(context.Background(), InviteGenerateParams{Count: 1})
	require.NoError(t, err)
	require.Len(t, codes, 1)
	return codes[0]
}

func TestSignup_InviteOnly(t *testing.T) {
	env := newTestEnv(t, withInviteOnly())
	ctx := context.Background()
	code := generateInvite(t, env)

	_, err := env.signup.Register(ctx, SignupParams{
		Email: "a@example.com", Password: "password123", BusinessName: "A",
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.signup.Register(ctx, SignupParams{
		Email: "a@example.com", Password: "password123", BusinessName: "A", InviteCode: "NOPE-NOPE",
	})
	require.ErrorIs(t, err, lead.ErrInviteUnavailable)

	result, err := env.signup.Register(ctx, SignupParams{
		Email: "a@example.com", Password: "password123", BusinessName: "A", InviteCode: code.Code(),
	})
	require.NoError(t, err)

	used, err := env.invites.FindOne(ctx, repository.WithID(code.ID()))
	require.NoError(t, err)
	assert.Equal(t, lead.InviteUsed, used.Status())
	assert.Equal(t, result.Session.User.ID(), used.UsedBy())

	_, err = env.signup.Register(ctx, SignupParams{
		Email: "b@example.com", Password: "password123", BusinessName: "B", InviteCode: code.Code(),
	})
	assert.ErrorIs(t, err, lead.ErrInviteUnavailable)
}

func TestSignup_OpenModeIgnoresBadCode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.signup.Register(context.Background(), SignupParams{
		Email: "a@example.com", Password: "password123", BusinessName: "A", InviteCode: "DOES-NOT-EXIST",
	})

	assert.NoError(t, err)
}

func TestSignup_ExpiredInvite(t *testing.T) {
	env := newTestEnv(t, withInviteOnly())
	ctx := context.Background()
	codes, err := env.inviteCodes.Generate(ctx, InviteGenerateParams{Count: 1, ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	expired, err := env.invites.Save(ctx, lead.ReconstructInviteCode(
		codes[0].ID(), codes[0].Code(), "", lead.InviteUnused, 0, time.Time{},
		time.Now().Add(-time.Minute), codes[0].CreatedAt(),
	))
	require.NoError(t, err)

	_, err = env.signup.Register(ctx, SignupParams{
		Email: "a@example.com", Password: "password123", BusinessName: "A", InviteCode: expired.Code(),
	})

	assert.ErrorIs(t, err, lead.ErrInviteUnavailable)
}

func TestSignup_ConvertsLead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	captured, err := env.leads.Capture(ctx, "joe@example.com", lead.Details{Name: "Joe"})
	require.NoError(t, err)

	env.register(t, "Joe@Example.com", "Joe's")

	converted, err := env.leadRows.FindOne(ctx, repository.WithID(captured.ID()))
	require.NoError(t, err)
	assert.Equal(t, lead.StatusConverted, converted.Status())
	assert.False(t, converted.ConvertedAt().IsZero())
}
