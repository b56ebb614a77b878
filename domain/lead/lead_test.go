package lead

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfunnel/funnel/domain"
)

func TestNewLead(t *testing.T) {
	l, err := NewLead(" Owner@Example.com ", Details{Name: " Joe ", Source: "google-ads"})
	require.NoError(t, err)

	assert.Equal(t, "owner@example.com", l.Email())
	assert.Equal(t, "Joe", l.Details().Name)
	assert.Equal(t, StatusNew, l.Status())
}

func TestNewLead_InvalidEmail(t *testing.T) {
	for _, email := range []string{"", "nope", "Joe <joe@example.com>"} {
		_, err := NewLead(email, Details{})
		assert.ErrorIs(t, err, domain.ErrValidation, email)
	}
}

func TestLead_StatusTransitions(t *testing.T) {
	l, err := NewLead("a@example.com", Details{})
	require.NoError(t, err)

	converted := l.MarkConverted()
	assert.Equal(t, StatusConverted, converted.Status())
	assert.False(t, converted.ConvertedAt().IsZero())

	lost := converted.WithStatus(StatusLost)
	assert.True(t, lost.ConvertedAt().IsZero())
}

func TestLead_Merge(t *testing.T) {
	l, _ := NewLead("a@example.com", Details{Name: "Ann", Phone: "1"})

	merged := l.Merge(Details{Phone: "2", Message: "call me"})

	assert.Equal(t, "Ann", merged.Details().Name)
	assert.Equal(t, "2", merged.Details().Phone)
	assert.Equal(t, "call me", merged.Details().Message)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Contacted")
	require.NoError(t, err)
	assert.Equal(t, StatusContacted, s)

	_, err = ParseStatus("won")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateInviteCode(t *testing.T) {
	seen := map[string]bool{}
	for range 50 {
		code, err := GenerateInviteCode()
		require.NoError(t, err)
		assert.Len(t, code, InviteCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(inviteAlphabet, r), "unexpected %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestInviteCode_Lifecycle(t *testing.T) {
	now := time.Now()
	code, err := NewInviteCode("abcd2345", "for Joe", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "ABCD2345", code.Code())
	assert.True(t, code.Available(now))

	used, err := code.Redeem(11, now)
	require.NoError(t, err)
	assert.Equal(t, InviteUsed, used.Status())
	assert.Equal(t, int64(11), used.UsedBy())

	_, err = used.Redeem(12, now)
	assert.ErrorIs(t, err, ErrInviteUnavailable)

	_, err = used.Revoke()
	assert.ErrorIs(t, err, domain.ErrConflict)

	revoked, err := code.Revoke()
	require.NoError(t, err)
	assert.False(t, revoked.Available(now))
}

func TestInviteCode_Expiry(t *testing.T) {
	now := time.Now()
	code, err := NewInviteCode("ABCD2345", "", now.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, code.Available(now))
	assert.False(t, code.Available(now.Add(2*time.Hour)))

	_, err = NewInviteCode("ABCD2345", "", now.Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewInviteCode("SHORT", "", time.Time{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEarlyAccessSignup(t *testing.T) {
	s, err := NewEarlyAccessSignup("Joe@Example.com", "Joe", "Joe's Auto")
	require.NoError(t, err)
	assert.Equal(t, SignupPending, s.Status())

	now := time.Now()
	paid := s.WithCheckoutSession("cs_1").MarkPaid(4900, now)
	assert.True(t, paid.IsPaid())
	assert.Equal(t, int64(4900), paid.AmountCents())
	assert.Equal(t, "cs_1", paid.CheckoutSessionID())

	again := paid.MarkPaid(100, now.Add(time.Hour))
	assert.Equal(t, int64(4900), again.AmountCents())
	assert.Equal(t, paid.PaidAt(), again.PaidAt())
}
