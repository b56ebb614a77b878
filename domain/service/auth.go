package service

import (
	"context"
	"time"

	"github.com/reviewfunnel/funnel/domain/account"
)

// Claims is what a bearer token asserts about its holder.
type Claims struct {
	UserID    int64
	Email     string
	Role      account.Role
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(user account.User) (string, time.Time, error)
	// Parse returns an error matching domain.ErrUnauthorized for any bad token.
	Parse(token string) (Claims, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns an error matching domain.ErrUnauthorized on mismatch.
	Compare(hash, password string) error
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	// Allow records one hit for key and reports whether it is within quota,
	// with the remaining hits and the time until the window resets.
	Allow(ctx context.Context, key string) (allowed bool, remaining int, reset time.Duration, err error)
}
