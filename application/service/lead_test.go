package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/task"
)

func TestLeads_Capture_MergesRepeatSubmissions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.leads.Capture(ctx, "Pat@Example.com", lead.Details{Name: "Pat", Source: "landing"})
	require.NoError(t, err)
	second, err := env.leads.Capture(ctx, "pat@example.com", lead.Details{Phone: "555-0100"})
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
	assert.Equal(t, "Pat", second.Details().Name)
	assert.Equal(t, "555-0100", second.Details().Phone)
	assert.Equal(t, lead.StatusNew, second.Status())

	ops := env.pendingOperations(t)
	assert.Contains(t, ops, task.OperationLeadNotificationEmail)
	assert.Contains(t, ops, task.OperationCaptureAnalyticsEvent)
}

func TestLeads_Capture_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.leads.Capture(context.Background(), "nope", lead.Details{})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLeads_StatusAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, err := env.leads.Capture(ctx, "a@example.com", lead.Details{})
	require.NoError(t, err)
	_, err = env.leads.Capture(ctx, "b@example.com", lead.Details{})
	require.NoError(t, err)

	contacted, err := env.leads.UpdateStatus(ctx, a.ID(), lead.StatusContacted)
	require.NoError(t, err)
	assert.Equal(t, lead.StatusContacted, contacted.Status())

	page, err := env.leads.List(ctx, LeadListParams{Status: lead.StatusContacted})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, a.ID(), page.Items[0].ID())

	converted, err := env.leads.MarkConverted(ctx, a.ID())
	require.NoError(t, err)
	assert.False(t, converted.ConvertedAt().IsZero())

	require.NoError(t, env.leads.Delete(ctx, a.ID()))
	_, err = env.leads.UpdateStatus(ctx, a.ID(), lead.StatusLost)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
