package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	"github.com/reviewfunnel/funnel/domain/review"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
)

// BusinessUpdateParams changes a business's profile. Nil fields are left
// alone; a pointer to "" clears an optional URL.
type BusinessUpdateParams struct {
	Name             *string
	BrandColor       *string
	LogoURL          *string
	PlatformURLs     map[business.Platform]*string
	NotifyOnFeedback *bool
}

// BusinessCreateParams is an operator creating a business for an owner.
type BusinessCreateParams struct {
	OwnerEmail string
	Name       string
	// Slug is optional; empty derives one from Name.
	Slug string
}

// BusinessListParams filters the operator business list.
type BusinessListParams struct {
	PageParams
	Search       string
	Subscription business.SubscriptionStatus
}

// Businesses manages business profiles for owners and operators.
// Embeds Collection for Find/Get; bespoke methods handle writes.
type Businesses struct {
	repository.Collection[business.Business]
	tx         repository.Transactor
	businesses business.BusinessStore
	templates  business.TemplateStore
	reviews    review.ReviewStore
	feedback   review.FeedbackStore
	users      account.UserStore
	hasher     domainservice.PasswordHasher
	auth       *Auth
	logger     *slog.Logger
}

// NewBusinesses creates a new Businesses service.
func NewBusinesses(
	tx repository.Transactor,
	businesses business.BusinessStore,
	templates business.TemplateStore,
	reviews review.ReviewStore,
	feedback review.FeedbackStore,
	users account.UserStore,
	hasher domainservice.PasswordHasher,
	auth *Auth,
	logger *slog.Logger,
) *Businesses {
	return &Businesses{
		Collection: repository.NewCollection[business.Business](businesses),
		tx:         tx,
		businesses: businesses,
		templates:  templates,
		reviews:    reviews,
		feedback:   feedback,
		users:      users,
		hasher:     hasher,
		auth:       auth,
		logger:     logger,
	}
}

// ByID returns a business by ID.
func (s *Businesses) ByID(ctx context.Context, id int64) (business.Business, error) {
	return s.businesses.FindOne(ctx, repository.WithID(id))
}

// BySlug returns the business behind a public review link.
func (s *Businesses) BySlug(ctx context.Context, slug string) (business.Business, error) {
	return s.businesses.FindOne(ctx, business.WithSlug(slug))
}

// ForOwner returns the business owned by userID.
func (s *Businesses) ForOwner(ctx context.Context, userID int64) (business.Business, error) {
	b, err := s.businesses.FindOne(ctx, business.WithOwnerID(userID), repository.WithOrderAsc("id"))
	if err != nil {
		return business.Business{}, fmt.Errorf("find business for owner: %w", err)
	}
	return b, nil
}

// List returns a page of businesses for operators.
func (s *Businesses) List(ctx context.Context, params BusinessListParams) (Page[business.Business], error) {
	var filters []repository.Option
	if term := strings.TrimSpace(params.Search); term != "" {
		filters = append(filters, business.WithNameLike(term))
	}
	if params.Subscription != "" {
		filters = append(filters, business.WithSubscription(params.Subscription))
	}
	return listPage(ctx, s.businesses, params.PageParams, filters...)
}

// Update applies profile changes. The slug never follows a rename.
func (s *Businesses) Update(ctx context.Context, id int64, params BusinessUpdateParams) (business.Business, error) {
	b, err := s.ByID(ctx, id)
	if err != nil {
		return business.Business{}, err
	}

	if params.Name != nil {
		if b, err = b.Rename(*params.Name); err != nil {
			return business.Business{}, err
		}
	}
	if params.BrandColor != nil {
		if b, err = b.WithBrandColor(*params.BrandColor); err != nil {
			return business.Business{}, err
		}
	}
	if params.LogoURL != nil {
		if b, err = b.WithLogoURL(*params.LogoURL); err != nil {
			return business.Business{}, err
		}
	}
	if len(params.PlatformURLs) > 0 {
		urls, err := b.PlatformURLs().Merge(params.PlatformURLs)
		if err != nil {
			return business.Business{}, err
		}
		b = b.WithPlatformURLs(urls)
	}
	if params.NotifyOnFeedback != nil {
		b = b.WithNotifyOnFeedback(*params.NotifyOnFeedback)
	}

	saved, err := s.businesses.Save(ctx, b)
	if err != nil {
		return business.Business{}, fmt.Errorf("save business: %w", err)
	}
	return saved, nil
}

// UpdateSurvey stores the onboarding survey answers.
func (s *Businesses) UpdateSurvey(ctx context.Context, id int64, survey business.Survey) (business.Business, error) {
	b, err := s.ByID(ctx, id)
	if err != nil {
		return business.Business{}, err
	}
	saved, err := s.businesses.Save(ctx, b.WithSurvey(survey))
	if err != nil {
		return business.Business{}, fmt.Errorf("save business: %w", err)
	}
	return saved, nil
}

// ChangeSlug sets an operator-chosen slug.
func (s *Businesses) ChangeSlug(ctx context.Context, id int64, slug string) (business.Business, error) {
	b, err := s.ByID(ctx, id)
	if err != nil {
		return business.Business{}, err
	}
	if slug == b.Slug() {
		return b, nil
	}
	if err := checkSlugFree(ctx, s.businesses, slug); err != nil {
		return business.Business{}, err
	}

	saved, err := s.businesses.Save(ctx, b.WithSlug(slug))
	if err != nil {
		return business.Business{}, fmt.Errorf("save business: %w", err)
	}
	s.logger.InfoContext(ctx, "business slug changed",
		slog.Int64("business_id", saved.ID()),
		slog.String("from", b.Slug()),
		slog.String("to", saved.Slug()),
	)
	return saved, nil
}

// Create makes a business for an owner email. An unknown owner gets an
// account with a random password and is sent a password reset link.
func (s *Businesses) Create(ctx context.Context, params BusinessCreateParams) (business.Business, error) {
	email, err := lead.NormalizeEmail(params.OwnerEmail)
	if err != nil {
		return business.Business{}, err
	}
	name, err := business.ValidateName(params.Name)
	if err != nil {
		return business.Business{}, err
	}
	slug := strings.TrimSpace(params.Slug)

	var (
		created  business.Business
		newOwner bool
	)
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		owner, isNew, err := s.findOrCreateOwner(ctx, email)
		if err != nil {
			return err
		}
		newOwner = isNew

		if !isNew {
			has, err := s.businesses.Exists(ctx, business.WithOwnerID(owner.ID()))
			if err != nil {
				return fmt.Errorf("check owner business: %w", err)
			}
			if has {
				return fmt.Errorf("%w: %s already owns a business", domain.ErrConflict, email)
			}
		}

		b, err := business.NewBusiness(owner.ID(), name)
		if err != nil {
			return err
		}
		if slug != "" {
			if err := checkSlugFree(ctx, s.businesses, slug); err != nil {
				return err
			}
			created, err = s.businesses.Save(ctx, b.WithSlug(slug))
			if err != nil {
				return fmt.Errorf("save business: %w", err)
			}
		} else {
			created, err = insertWithSlug(ctx, s.businesses, b)
			if err != nil {
				return err
			}
		}
		return seedTemplates(ctx, s.templates, created)
	})
	if err != nil {
		return business.Business{}, err
	}

	s.logger.InfoContext(ctx, "business created by operator",
		slog.Int64("business_id", created.ID()),
		slog.String("slug", created.Slug()),
		slog.Bool("new_owner", newOwner),
	)

	if newOwner {
		if err := s.auth.RequestPasswordReset(ctx, email); err != nil {
			s.logger.WarnContext(ctx, "failed to send owner invitation",
				slog.Int64("business_id", created.ID()),
				slog.String("error", err.Error()),
			)
		}
	}
	return created, nil
}

func (s *Businesses) findOrCreateOwner(ctx context.Context, email string) (account.User, bool, error) {
	owner, err := s.users.FindOne(ctx, repository.WithEmail(email))
	if err == nil {
		return owner, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return account.User{}, false, fmt.Errorf("find owner: %w", err)
	}

	// The owner picks a real password through the reset link.
	hash, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return account.User{}, false, fmt.Errorf("hash password: %w", err)
	}
	user, err := account.NewUser(email, hash)
	if err != nil {
		return account.User{}, false, err
	}
	saved, err := s.users.Save(ctx, user)
	if err != nil {
		return account.User{}, false, fmt.Errorf("save owner: %w", err)
	}
	return saved, true, nil
}

// Delete removes a business with its reviews, feedback and templates in one
// transaction.
func (s *Businesses) Delete(ctx context.Context, id int64) error {
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		b, err := s.businesses.FindOne(ctx, repository.WithID(id))
		if err != nil {
			return err
		}

		children := []struct {
			label string
			store interface {
				DeleteBy(ctx context.Context, options ...repository.Option) error
			}
		}{
			{"reviews", s.reviews},
			{"feedback", s.feedback},
			{"templates", s.templates},
		}
		for _, c := range children {
			if err := c.store.DeleteBy(ctx, repository.WithBusinessID(b.ID())); err != nil {
				return fmt.Errorf("delete %s: %w", c.label, err)
			}
		}

		if err := s.businesses.Delete(ctx, b); err != nil {
			return fmt.Errorf("delete business: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "business deleted", slog.Int64("business_id", id))
	return nil
}
