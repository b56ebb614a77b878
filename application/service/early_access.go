package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
)

// EarlyAccessParams is a public early access request.
type EarlyAccessParams struct {
	Email        string
	Name         string
	BusinessName string
}

// EarlyAccessListParams filters the operator signup list.
type EarlyAccessListParams struct {
	PageParams
	Status lead.SignupStatus
}

// EarlyAccess sells one-time pre-launch access.
type EarlyAccess struct {
	store     lead.SignupStore
	gateway   domainservice.PaymentGateway
	cfg       config.PaymentConfig
	publicURL string
	logger    *slog.Logger
}

// NewEarlyAccess creates a new EarlyAccess service.
func NewEarlyAccess(
	store lead.SignupStore,
	gateway domainservice.PaymentGateway,
	cfg config.PaymentConfig,
	publicURL string,
	logger *slog.Logger,
) *EarlyAccess {
	return &EarlyAccess{
		store:     store,
		gateway:   gateway,
		cfg:       cfg,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// Join records a pending signup, reusing an earlier one for the same email,
// and starts a one-time checkout for it.
func (s *EarlyAccess) Join(ctx context.Context, params EarlyAccessParams) (lead.EarlyAccessSignup, billing.CheckoutSession, error) {
	signup, err := lead.NewEarlyAccessSignup(params.Email, params.Name, params.BusinessName)
	if err != nil {
		return lead.EarlyAccessSignup{}, billing.CheckoutSession{}, err
	}

	existing, err := s.store.FindOne(ctx, repository.WithEmail(signup.Email()))
	switch {
	case err == nil:
		if existing.IsPaid() {
			return lead.EarlyAccessSignup{}, billing.CheckoutSession{}, fmt.Errorf("%w: %s already has early access", domain.ErrConflict, signup.Email())
		}
		signup = existing.WithDetails(params.Name, params.BusinessName)
	case errors.Is(err, domain.ErrNotFound):
	default:
		return lead.EarlyAccessSignup{}, billing.CheckoutSession{}, fmt.Errorf("find signup: %w", err)
	}

	signup, err = s.store.Save(ctx, signup)
	if err != nil {
		return lead.EarlyAccessSignup{}, billing.CheckoutSession{}, fmt.Errorf("save signup: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		Kind:          billing.KindEarlyAccess,
		CustomerEmail: signup.Email(),
		PriceID:       s.cfg.EarlyAccessPriceID(),
		AmountCents:   s.cfg.EarlyAccessAmount(),
		ProductName:   "Early access",
		SuccessURL:    s.publicURL + "/early-access?checkout=success",
		CancelURL:     s.publicURL + "/early-access?checkout=canceled",
		Metadata: map[string]string{
			billing.MetadataKind:     string(billing.KindEarlyAccess),
			billing.MetadataSignupID: strconv.FormatInt(signup.ID(), 10),
		},
	})
	if err != nil {
		return lead.EarlyAccessSignup{}, billing.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}

	signup, err = s.store.Save(ctx, signup.WithCheckoutSession(session.ID))
	if err != nil {
		return lead.EarlyAccessSignup{}, billing.CheckoutSession{}, fmt.Errorf("save signup: %w", err)
	}

	s.logger.InfoContext(ctx, "early access checkout started",
		slog.Int64("signup_id", signup.ID()),
		slog.String("session_id", session.ID),
	)
	return signup, session, nil
}

// List returns a page of signups, newest first.
func (s *EarlyAccess) List(ctx context.Context, params EarlyAccessListParams) (Page[lead.EarlyAccessSignup], error) {
	var filters []repository.Option
	if params.Status != "" {
		filters = append(filters, repository.WithStatus(string(params.Status)))
	}
	return listPage(ctx, s.store, params.PageParams, filters...)
}
