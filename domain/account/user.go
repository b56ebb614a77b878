// Package account provides users, their roles, password resets, and the
// authenticated principal attached to a request.
package account

import (
	"fmt"
	"slices"
	"time"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/lead"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// MaxPasswordLength is bcrypt's input limit.
const MaxPasswordLength = 72

// Role is a user's permission level.
type Role string

// Role values.
const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
)

// ValidatePassword checks length bounds.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, MaxPasswordLength)
	}
	return nil
}

// User is someone who can sign in.
type User struct {
	id           int64
	email        string
	passwordHash string
	role         Role
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates an unsaved owner. passwordHash must already be hashed.
func NewUser(email, passwordHash string) (User, error) {
	email, err := lead.NormalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	return User{
		email:        email,
		passwordHash: passwordHash,
		role:         RoleOwner,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser rebuilds a User from storage.
func ReconstructUser(id int64, email, passwordHash string, role Role, createdAt, updatedAt time.Time) User {
	return User{
		id:           id,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the user ID.
func (u User) ID() int64 { return u.id }

// Email returns the normalized email.
func (u User) Email() string { return u.email }

// PasswordHash returns the stored hash.
func (u User) PasswordHash() string { return u.passwordHash }

// Role returns the role.
func (u User) Role() Role { return u.role }

// CreatedAt returns when the user signed up.
func (u User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last modification time.
func (u User) UpdatedAt() time.Time { return u.updatedAt }

// WithPasswordHash returns a copy with a new hash.
func (u User) WithPasswordHash(hash string) User {
	u.passwordHash = hash
	u.updatedAt = time.Now().UTC()
	return u
}

// WithRole returns a copy with the given role.
func (u User) WithRole(r Role) User {
	u.role = r
	u.updatedAt = time.Now().UTC()
	return u
}

// Principal is the authenticated caller of a request.
type Principal struct {
	userID int64
	email  string
	role   Role
	admin  bool
}

// NewPrincipal builds a principal. The caller is an admin when the role is
// admin or the email is on adminEmails.
func NewPrincipal(userID int64, email string, role Role, adminEmails []string) Principal {
	return Principal{
		userID: userID,
		email:  email,
		role:   role,
		admin:  role == RoleAdmin || slices.Contains(adminEmails, email),
	}
}

// UserID returns the user ID.
func (p Principal) UserID() int64 { return p.userID }

// Email returns the email.
func (p Principal) Email() string { return p.email }

// Role returns the stored role.
func (p Principal) Role() Role { return p.role }

// IsAdmin reports whether the principal may use admin routes.
func (p Principal) IsAdmin() bool { return p.admin }

// IsZero reports whether no one is authenticated.
func (p Principal) IsZero() bool { return p.userID == 0 }
