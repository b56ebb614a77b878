package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/lead"
)

func TestInvites_Generate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	codes, err := env.inviteCodes.Generate(ctx, InviteGenerateParams{Count: 5, Note: "beta batch"})
	require.NoError(t, err)
	require.Len(t, codes, 5)

	seen := map[string]bool{}
	for _, c := range codes {
		assert.False(t, seen[c.Code()], "codes are unique")
		seen[c.Code()] = true
		assert.Equal(t, "beta batch", c.Note())
		assert.Equal(t, lead.InviteUnused, c.Status())
	}

	for _, n := range []int{0, lead.MaxInviteBatch + 1} {
		_, err := env.inviteCodes.Generate(ctx, InviteGenerateParams{Count: n})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestInvites_ValidateAndRevoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	code := generateInvite(t, env)

	ok, err := env.inviteCodes.Validate(ctx, code.Code())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.inviteCodes.Validate(ctx, "UNKNOWN-CODE")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.inviteCodes.Validate(ctx, " ")
	require.NoError(t, err)
	assert.False(t, ok)

	revoked, err := env.inviteCodes.Revoke(ctx, code.ID())
	require.NoError(t, err)
	assert.Equal(t, lead.InviteRevoked, revoked.Status())

	ok, err = env.inviteCodes.Validate(ctx, code.Code())
	require.NoError(t, err)
	assert.False(t, ok)

	page, err := env.inviteCodes.List(ctx, InviteListParams{Status: lead.InviteRevoked})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, env.inviteCodes.Delete(ctx, code.ID()))
	_, err = env.inviteCodes.Revoke(ctx, code.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
