package lead

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain"
)

// Invite code shape.
const (
	InviteCodeLength = 8
	inviteAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	MaxInviteBatch   = 100
)

// ErrInviteUnavailable is returned when a code is used, revoked or expired.
var ErrInviteUnavailable = errors.New("invite code is not available")

// InviteStatus is the lifecycle state of an invite code.
type InviteStatus string

// InviteStatus values.
const (
	InviteUnused  InviteStatus = "unused"
	InviteUsed    InviteStatus = "used"
	InviteRevoked InviteStatus = "revoked"
)

// GenerateInviteCode returns a random code without look-alike characters
// (no 0/O, 1/I/L).
func GenerateInviteCode() (string, error) {
	var b strings.Builder
	b.Grow(InviteCodeLength)
	limit := big.NewInt(int64(len(inviteAlphabet)))
	for range InviteCodeLength {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b.WriteByte(inviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeInviteCode upper-cases and trims user input.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// InviteCode grants signup while invite-only mode is on.
type InviteCode struct {
	id        int64
	code      string
	note      string
	status    InviteStatus
	usedBy    int64
	usedAt    time.Time
	expiresAt time.Time
	createdAt time.Time
}

// NewInviteCode creates an unsaved code. A zero expiresAt never expires.
func NewInviteCode(code, note string, expiresAt time.Time) (InviteCode, error) {
	code = NormalizeInviteCode(code)
	if len(code) != InviteCodeLength {
		return InviteCode{}, fmt.Errorf("%w: invite code must be %d characters", domain.ErrValidation, InviteCodeLength)
	}
	now := time.Now().UTC()
	if !expiresAt.IsZero() && !expiresAt.After(now) {
		return InviteCode{}, fmt.Errorf("%w: expiry must be in the future", domain.ErrValidation)
	}
	return InviteCode{
		code:      code,
		note:      strings.TrimSpace(note),
		status:    InviteUnused,
		expiresAt: expiresAt.UTC(),
		createdAt: now,
	}, nil
}

// ReconstructInviteCode rebuilds an InviteCode from storage.
func ReconstructInviteCode(
	id int64,
	code, note string,
	status InviteStatus,
	usedBy int64,
	usedAt, expiresAt, createdAt time.Time,
) InviteCode {
	return InviteCode{
		id:        id,
		code:      code,
		note:      note,
		status:    status,
		usedBy:    usedBy,
		usedAt:    usedAt,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

// ID returns the invite ID.
func (c InviteCode) ID() int64 { return c.id }

// Code returns the code string.
func (c InviteCode) Code() string { return c.code }

// Note returns the admin note.
func (c InviteCode) Note() string { return c.note }

// Status returns the stored status.
func (c InviteCode) Status() InviteStatus { return c.status }

// UsedBy returns the user who redeemed the code, or 0.
func (c InviteCode) UsedBy() int64 { return c.usedBy }

// UsedAt returns when the code was redeemed.
func (c InviteCode) UsedAt() time.Time { return c.usedAt }

// ExpiresAt returns the expiry, or the zero time.
func (c InviteCode) ExpiresAt() time.Time { return c.expiresAt }

// CreatedAt returns when the code was generated.
func (c InviteCode) CreatedAt() time.Time { return c.createdAt }

// Expired reports whether the code has passed its expiry at now.
func (c InviteCode) Expired(now time.Time) bool {
	return !c.expiresAt.IsZero() && !now.Before(c.expiresAt)
}

// Available reports whether the code can be redeemed at now.
func (c InviteCode) Available(now time.Time) bool {
	return c.status == InviteUnused && !c.Expired(now)
}

// Redeem marks the code used by userID.
func (c InviteCode) Redeem(userID int64, now time.Time) (InviteCode, error) {
	if !c.Available(now) {
		return c, fmt.Errorf("%w: %s", ErrInviteUnavailable, c.code)
	}
	c.status = InviteUsed
	c.usedBy = userID
	c.usedAt = now.UTC()
	return c, nil
}

// Revoke marks an unused code revoked.
func (c InviteCode) Revoke() (InviteCode, error) {
	if c.status == InviteUsed {
		return c, fmt.Errorf("%w: invite %s was already used", domain.ErrConflict, c.code)
	}
	c.status = InviteRevoked
	return c, nil
}
