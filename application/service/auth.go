package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/internal/config"
)

var errBadCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)

var errBadResetToken = fmt.Errorf("%w: reset link is invalid or has expired", domain.ErrValidation)

// Session is a signed-in user and the bearer token that proves it.
type Session struct {
	User      account.User
	Token     string
	ExpiresAt time.Time
}

// Auth signs users in, resolves bearer tokens and runs password resets.
type Auth struct {
	tx        repository.Transactor
	users     account.UserStore
	resets    account.ResetStore
	tokens    domainservice.TokenIssuer
	hasher    domainservice.PasswordHasher
	queue     *Queue
	cfg       config.AuthConfig
	publicURL string
	logger    *slog.Logger
}

// NewAuth creates a new Auth service.
func NewAuth(
	tx repository.Transactor,
	users account.UserStore,
	resets account.ResetStore,
	tokens domainservice.TokenIssuer,
	hasher domainservice.PasswordHasher,
	queue *Queue,
	cfg config.AuthConfig,
	publicURL string,
	logger *slog.Logger,
) *Auth {
	return &Auth{
		tx:        tx,
		users:     users,
		resets:    resets,
		tokens:    tokens,
		hasher:    hasher,
		queue:     queue,
		cfg:       cfg,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Login checks credentials and issues a session.
func (s *Auth) Login(ctx context.Context, email, password string) (Session, error) {
	email, err := lead.NormalizeEmail(email)
	if err != nil {
		return Session{}, errBadCredentials
	}

	user, err := s.users.FindOne(ctx, repository.WithEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Session{}, errBadCredentials
		}
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash(), password); err != nil {
		s.logger.InfoContext(ctx, "login rejected", slog.Int64("user_id", user.ID()))
		return Session{}, errBadCredentials
	}

	return s.IssueSession(user)
}

// IssueSession signs a bearer token for user.
func (s *Auth) IssueSession(user account.User) (Session, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{User: user, Token: token, ExpiresAt: expires}, nil
}

// Authenticate resolves a bearer token to the principal making the request.
// The user is reloaded so role changes apply to tokens already issued.
func (s *Auth) Authenticate(ctx context.Context, token string) (account.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return account.Principal{}, err
	}

	user, err := s.users.FindOne(ctx, repository.WithID(claims.UserID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return account.Principal{}, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
		}
		return account.Principal{}, fmt.Errorf("find user: %w", err)
	}

	return account.NewPrincipal(user.ID(), user.Email(), user.Role(), s.cfg.AdminEmails()), nil
}

// User returns a user by ID.
func (s *Auth) User(ctx context.Context, id int64) (account.User, error) {
	return s.users.FindOne(ctx, repository.WithID(id))
}

// RequestPasswordReset emails a single-use reset link. Unknown addresses
// succeed silently so the endpoint cannot be used to enumerate accounts.
func (s *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	email, err := lead.NormalizeEmail(email)
	if err != nil {
		return err
	}

	user, err := s.users.FindOne(ctx, repository.WithEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.DebugContext(ctx, "password reset for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	token := uuid.NewString()
	reset := account.NewPasswordReset(user.ID(), token, s.cfg.ResetTokenTTL())
	if _, err := s.resets.Save(ctx, reset); err != nil {
		return fmt.Errorf("save password reset: %w", err)
	}

	s.queue.Notify(ctx, task.NewPasswordResetEmail(user.ID(), user.Email(), s.resetURL(token)))
	s.logger.InfoContext(ctx, "password reset requested", slog.Int64("user_id", user.ID()))
	return nil
}

// ResetPassword sets a new password using a token from RequestPasswordReset.
// Each token works once.
func (s *Auth) ResetPassword(ctx context.Context, token, password string) error {
	if err := account.ValidatePassword(password); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return errBadResetToken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.tx.InTransaction(ctx, func(ctx context.Context) error {
		reset, err := s.resets.FindOne(ctx, account.WithTokenHash(account.HashResetToken(token)))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errBadResetToken
			}
			return fmt.Errorf("find password reset: %w", err)
		}

		now := time.Now().UTC()
		if !reset.Usable(now) {
			return errBadResetToken
		}

		if err := s.resets.Consume(ctx, reset.Use(now)); err != nil {
			if errors.Is(err, account.ErrResetUsed) {
				return errBadResetToken
			}
			return err
		}

		user, err := s.users.FindOne(ctx, repository.WithID(reset.UserID()))
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		if _, err := s.users.Save(ctx, user.WithPasswordHash(hash)); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		s.logger.InfoContext(ctx, "password reset completed", slog.Int64("user_id", user.ID()))
		return nil
	})
}

// ChangePassword replaces a signed-in user's password after checking the
// current one.
func (s *Auth) ChangePassword(ctx context.Context, userID int64, current, password string) error {
	if err := account.ValidatePassword(password); err != nil {
		return err
	}

	user, err := s.users.FindOne(ctx, repository.WithID(userID))
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash(), current); err != nil {
		return errBadCredentials
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.Save(ctx, user.WithPasswordHash(hash)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Promote gives the user with email the admin role.
func (s *Auth) Promote(ctx context.Context, email string) (account.User, error) {
	email, err := lead.NormalizeEmail(email)
	if err != nil {
		return account.User{}, err
	}
	user, err := s.users.FindOne(ctx, repository.WithEmail(email))
	if err != nil {
		return account.User{}, fmt.Errorf("find user: %w", err)
	}
	saved, err := s.users.Save(ctx, user.WithRole(account.RoleAdmin))
	if err != nil {
		return account.User{}, fmt.Errorf("save user: %w", err)
	}
	s.logger.InfoContext(ctx, "user promoted to admin", slog.Int64("user_id", saved.ID()))
	return saved, nil
}

func (s *Auth) resetURL(token string) string {
	return s.publicURL + "/reset-password?token=" + url.QueryEscape(token)
}
