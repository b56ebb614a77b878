package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/domain/task"
)

// SignupParams is an owner registration.
type SignupParams struct {
	Email        string
	Password     string
	BusinessName string
	InviteCode   string
	Source       string
}

// SignupResult is what a completed registration created.
type SignupResult struct {
	Business business.Business
	Session  Session
}

// Signup registers business owners.
type Signup struct {
	tx         repository.Transactor
	users      account.UserStore
	businesses business.BusinessStore
	templates  business.TemplateStore
	invites    lead.InviteStore
	leads      lead.LeadStore
	hasher     domainservice.PasswordHasher
	auth       *Auth
	queue      *Queue
	inviteOnly bool
	logger     *slog.Logger
}

// NewSignup creates a new Signup service.
func NewSignup(
	tx repository.Transactor,
	users account.UserStore,
	businesses business.BusinessStore,
	templates business.TemplateStore,
	invites lead.InviteStore,
	leads lead.LeadStore,
	hasher domainservice.PasswordHasher,
	auth *Auth,
	queue *Queue,
	inviteOnly bool,
	logger *slog.Logger,
) *Signup {
	return &Signup{
		tx:         tx,
		users:      users,
		businesses: businesses,
		templates:  templates,
		invites:    invites,
		leads:      leads,
		hasher:     hasher,
		auth:       auth,
		queue:      queue,
		inviteOnly: inviteOnly,
		logger:     logger,
	}
}

// InviteOnly reports whether registration requires an invite code.
func (s *Signup) InviteOnly() bool {
	return s.inviteOnly
}

// Register creates the owner account, the business with its slug and
// default templates, redeems the invite and converts the matching lead, all
// in one transaction. Notifications are queued after commit.
func (s *Signup) Register(ctx context.Context, params SignupParams) (SignupResult, error) {
	email, err := lead.NormalizeEmail(params.Email)
	if err != nil {
		return SignupResult{}, err
	}
	if err := account.ValidatePassword(params.Password); err != nil {
		return SignupResult{}, err
	}
	name, err := business.ValidateName(params.BusinessName)
	if err != nil {
		return SignupResult{}, err
	}
	code := lead.NormalizeInviteCode(params.InviteCode)
	if s.inviteOnly && code == "" {
		return SignupResult{}, fmt.Errorf("%w: an invite code is required", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return SignupResult{}, fmt.Errorf("hash password: %w", err)
	}

	var (
		user     account.User
		biz      business.Business
		redeemed bool
	)
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.users.Exists(ctx, repository.WithEmail(email))
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: an account with this email already exists", domain.ErrConflict)
		}

		invite, err := s.findInvite(ctx, code)
		if err != nil {
			return err
		}

		newUser, err := account.NewUser(email, hash)
		if err != nil {
			return err
		}
		user, err = s.users.Save(ctx, newUser)
		if err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		if invite.ID() != 0 {
			used, err := invite.Redeem(user.ID(), time.Now())
			if err != nil {
				return err
			}
			if err := s.invites.Redeem(ctx, used); err != nil {
				return err
			}
			redeemed = true
		}

		newBiz, err := business.NewBusiness(user.ID(), name)
		if err != nil {
			return err
		}
		biz, err = insertWithSlug(ctx, s.businesses, newBiz)
		if err != nil {
			return err
		}

		if err := seedTemplates(ctx, s.templates, biz); err != nil {
			return err
		}

		return s.convertLead(ctx, email)
	})
	if err != nil {
		return SignupResult{}, err
	}

	s.logger.InfoContext(ctx, "signup completed",
		slog.Int64("user_id", user.ID()),
		slog.Int64("business_id", biz.ID()),
		slog.String("slug", biz.Slug()),
	)

	s.queue.Notify(ctx,
		task.NewWelcomeEmail(user.ID(), biz.ID()),
		task.NewAnalyticsCapture("signup_completed", task.UserDistinctID(user.ID()), map[string]any{
			"business_id": biz.ID(),
			"slug":        biz.Slug(),
			"source":      strings.TrimSpace(params.Source),
			"invited":     redeemed,
		}),
	)

	session, err := s.auth.IssueSession(user)
	if err != nil {
		return SignupResult{}, err
	}
	return SignupResult{Business: biz, Session: session}, nil
}

// findInvite returns the invite to redeem, or a zero InviteCode when none
// applies. In invite-only mode the code must be available; otherwise an
// unusable code is ignored.
func (s *Signup) findInvite(ctx context.Context, code string) (lead.InviteCode, error) {
	if code == "" {
		return lead.InviteCode{}, nil
	}

	invite, err := s.invites.FindOne(ctx, lead.WithCode(code))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return lead.InviteCode{}, fmt.Errorf("find invite: %w", err)
	}
	if err == nil && invite.Available(time.Now()) {
		return invite, nil
	}

	if s.inviteOnly {
		return lead.InviteCode{}, fmt.Errorf("%w: %w", domain.ErrValidation, lead.ErrInviteUnavailable)
	}
	s.logger.InfoContext(ctx, "ignoring unusable invite code at open signup")
	return lead.InviteCode{}, nil
}

func (s *Signup) convertLead(ctx context.Context, email string) error {
	l, err := s.leads.FindOne(ctx, repository.WithEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("find lead: %w", err)
	}
	if l.Status() == lead.StatusConverted {
		return nil
	}
	if _, err := s.leads.Save(ctx, l.MarkConverted()); err != nil {
		return fmt.Errorf("save lead: %w", err)
	}
	return nil
}
