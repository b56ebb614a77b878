package lead

import (
	"context"

	"github.com/reviewfunnel/funnel/domain/repository"
)

// LeadStore persists leads.
type LeadStore interface {
	repository.Store[Lead]
}

// InviteStore persists invite codes.
type InviteStore interface {
	repository.Store[InviteCode]

	// Redeem stores a code returned by InviteCode.Redeem, provided the stored
	// row is still unused. Otherwise it returns ErrInviteUnavailable.
	Redeem(ctx context.Context, code InviteCode) error
}

// SignupStore persists early access signups.
type SignupStore interface {
	repository.Store[EarlyAccessSignup]
}

// WithCode filters by the "code" column.
func WithCode(code string) repository.Option {
	return repository.WithCondition("code", NormalizeInviteCode(code))
}

// WithCheckoutSessionID filters by the "checkout_session_id" column.
func WithCheckoutSessionID(id string) repository.Option {
	return repository.WithCondition("checkout_session_id", id)
}
