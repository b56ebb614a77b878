package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrResetUsed is returned when a reset token was consumed by another
// request first.
var ErrResetUsed = errors.New("password reset already used")

// PasswordReset is a single-use token for setting a new password. Only a
// hash of the token is stored.
type PasswordReset struct {
	id        int64
	userID    int64
	tokenHash string
	expiresAt time.Time
	usedAt    time.Time
	createdAt time.Time
}

// HashResetToken returns the stored form of a reset token.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// NewPasswordReset creates an unsaved reset for token, valid for ttl.
func NewPasswordReset(userID int64, token string, ttl time.Duration) PasswordReset {
	now := time.Now().UTC()
	return PasswordReset{
		userID:    userID,
		tokenHash: HashResetToken(token),
		expiresAt: now.Add(ttl),
		createdAt: now,
	}
}

// ReconstructPasswordReset rebuilds a reset from storage.
func ReconstructPasswordReset(id, userID int64, tokenHash string, expiresAt, usedAt, createdAt time.Time) PasswordReset {
	return PasswordReset{
		id:        id,
		userID:    userID,
		tokenHash: tokenHash,
		expiresAt: expiresAt,
		usedAt:    usedAt,
		createdAt: createdAt,
	}
}

// ID returns the reset ID.
func (r PasswordReset) ID() int64 { return r.id }

// UserID returns the user the reset belongs to.
func (r PasswordReset) UserID() int64 { return r.userID }

// TokenHash returns the sha256 hex of the token.
func (r PasswordReset) TokenHash() string { return r.tokenHash }

// ExpiresAt returns the expiry.
func (r PasswordReset) ExpiresAt() time.Time { return r.expiresAt }

// UsedAt returns when the token was used, or the zero time.
func (r PasswordReset) UsedAt() time.Time { return r.usedAt }

// CreatedAt returns when the reset was requested.
func (r PasswordReset) CreatedAt() time.Time { return r.createdAt }

// Usable reports whether the token is unused and unexpired at now.
func (r PasswordReset) Usable(now time.Time) bool {
	return r.usedAt.IsZero() && now.Before(r.expiresAt)
}

// Use returns a copy marked used at now.
func (r PasswordReset) Use(now time.Time) PasswordReset {
	r.usedAt = now.UTC()
	return r
}
