package account

import (
	"context"

	"github.com/reviewfunnel/funnel/domain/repository"
)

// UserStore persists users. Saving a duplicate email fails with an error
// matching domain.ErrConflict.
type UserStore interface {
	repository.Store[User]
}

// ResetStore persists password resets.
type ResetStore interface {
	repository.Store[PasswordReset]

	// Consume stores a reset returned by PasswordReset.Use, provided the
	// stored row is still unused. Otherwise it returns ErrResetUsed.
	Consume(ctx context.Context, reset PasswordReset) error
}

// WithTokenHash filters by the "token_hash" column.
func WithTokenHash(hash string) repository.Option {
	return repository.WithCondition("token_hash", hash)
}

// WithUserID filters by the "user_id" column.
func WithUserID(id int64) repository.Option {
	return repository.WithCondition("user_id", id)
}

// WithRole filters by the "role" column.
func WithRole(r Role) repository.Option {
	return repository.WithCondition("role", string(r))
}
