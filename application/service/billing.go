package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/internal/config"
)

// WebhookResult describes what a webhook delivery did.
type WebhookResult struct {
	EventID   string
	Type      string
	Duplicate bool
}

// Billing starts hosted checkouts and applies payment provider webhooks.
type Billing struct {
	tx         repository.Transactor
	gateway    domainservice.PaymentGateway
	verifier   domainservice.WebhookVerifier
	events     billing.EventStore
	businesses business.BusinessStore
	signups    lead.SignupStore
	queue      *Queue
	cfg        config.PaymentConfig
	publicURL  string
	logger     *slog.Logger
}

// NewBilling creates a new Billing service.
func NewBilling(
	tx repository.Transactor,
	gateway domainservice.PaymentGateway,
	verifier domainservice.WebhookVerifier,
	events billing.EventStore,
	businesses business.BusinessStore,
	signups lead.SignupStore,
	queue *Queue,
	cfg config.PaymentConfig,
	publicURL string,
	logger *slog.Logger,
) *Billing {
	return &Billing{
		tx:         tx,
		gateway:    gateway,
		verifier:   verifier,
		events:     events,
		businesses: businesses,
		signups:    signups,
		queue:      queue,
		cfg:        cfg,
		publicURL:  strings.TrimRight(publicURL, "/"),
		logger:     logger,
	}
}

// SubscriptionCheckout starts a subscription checkout for a business and
// returns the hosted page to redirect the owner to.
func (s *Billing) SubscriptionCheckout(ctx context.Context, businessID int64, ownerEmail string) (billing.CheckoutSession, error) {
	b, err := s.businesses.FindOne(ctx, repository.WithID(businessID))
	if err != nil {
		return billing.CheckoutSession{}, err
	}
	if b.Subscription() == business.SubscriptionActive {
		return billing.CheckoutSession{}, fmt.Errorf("%w: subscription is already active", domain.ErrConflict)
	}
	if s.cfg.SubscriptionPriceID() == "" {
		return billing.CheckoutSession{}, fmt.Errorf("%w: subscription price", domainservice.ErrNotConfigured)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		Kind:          billing.KindSubscription,
		CustomerEmail: ownerEmail,
		PriceID:       s.cfg.SubscriptionPriceID(),
		SuccessURL:    s.publicURL + "/dashboard?checkout=success",
		CancelURL:     s.publicURL + "/dashboard?checkout=canceled",
		Metadata: map[string]string{
			billing.MetadataKind:       string(billing.KindSubscription),
			billing.MetadataBusinessID: strconv.FormatInt(b.ID(), 10),
		},
	})
	if err != nil {
		return billing.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "subscription checkout started",
		slog.Int64("business_id", b.ID()),
		slog.String("session_id", session.ID),
	)
	return session, nil
}

// HandleWebhook verifies and applies one provider event. The signature is
// checked before anything touches the database. Each event is applied at
// most once: the event id is recorded in the same transaction as its
// effects.
func (s *Billing) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	event, err := s.verifier.Verify(payload, signature, time.Now())
	if err != nil {
		s.logger.WarnContext(ctx, "webhook rejected", slog.String("error", err.Error()))
		return WebhookResult{}, err
	}
	result := WebhookResult{EventID: event.ID, Type: event.Type}

	var notifications []task.Task
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		seen, err := s.events.Exists(ctx, billing.WithEventID(event.ID))
		if err != nil {
			return fmt.Errorf("check event: %w", err)
		}
		if seen {
			result.Duplicate = true
			return nil
		}
		if _, err := s.events.Save(ctx, billing.NewProcessedEvent(event)); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// A concurrent delivery of the same event got there first.
				result.Duplicate = true
				return nil
			}
			return fmt.Errorf("record event: %w", err)
		}

		notifications, err = s.apply(ctx, event)
		return err
	})
	if err != nil {
		return WebhookResult{}, err
	}

	if result.Duplicate {
		s.logger.InfoContext(ctx, "duplicate webhook ignored", slog.String("event_id", event.ID))
		return result, nil
	}

	s.queue.Notify(ctx, notifications...)
	s.logger.InfoContext(ctx, "webhook processed",
		slog.String("event_id", event.ID),
		slog.String("type", event.Type),
	)
	return result, nil
}

func (s *Billing) apply(ctx context.Context, event billing.Event) ([]task.Task, error) {
	switch event.Type {
	case billing.EventCheckoutCompleted:
		switch event.Kind() {
		case billing.KindSubscription:
			return s.activateSubscription(ctx, event)
		case billing.KindEarlyAccess:
			return s.markEarlyAccessPaid(ctx, event)
		default:
			s.logger.WarnContext(ctx, "checkout completed without a known kind",
				slog.String("event_id", event.ID),
				slog.String("kind", string(event.Kind())),
			)
			return nil, nil
		}
	case billing.EventSubscriptionDeleted:
		return nil, s.cancelSubscription(ctx, event)
	default:
		s.logger.DebugContext(ctx, "webhook type acknowledged", slog.String("type", event.Type))
		return nil, nil
	}
}

// Missing targets are logged and acknowledged: retrying the delivery would
// not make them appear.
func (s *Billing) activateSubscription(ctx context.Context, event billing.Event) ([]task.Task, error) {
	id, err := strconv.ParseInt(event.Metadata[billing.MetadataBusinessID], 10, 64)
	if err != nil {
		s.logger.WarnContext(ctx, "subscription checkout without business id", slog.String("event_id", event.ID))
		return nil, nil
	}
	b, err := s.businesses.FindOne(ctx, repository.WithID(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "subscription checkout for unknown business", slog.Int64("business_id", id))
			return nil, nil
		}
		return nil, fmt.Errorf("find business: %w", err)
	}

	if _, err := s.businesses.Save(ctx, b.Activate(event.CustomerID)); err != nil {
		return nil, fmt.Errorf("save business: %w", err)
	}
	return []task.Task{
		task.NewPaymentConfirmation(b.ID(), event.ID),
		task.NewAnalyticsCapture("subscription_activated", task.UserDistinctID(b.OwnerID()), map[string]any{
			"business_id":  b.ID(),
			"amount_cents": event.AmountTotal,
		}),
	}, nil
}

func (s *Billing) markEarlyAccessPaid(ctx context.Context, event billing.Event) ([]task.Task, error) {
	var options []repository.Option
	if id, err := strconv.ParseInt(event.Metadata[billing.MetadataSignupID], 10, 64); err == nil {
		options = append(options, repository.WithID(id))
	} else {
		options = append(options, lead.WithCheckoutSessionID(event.ObjectID))
	}

	signup, err := s.signups.FindOne(ctx, options...)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "early access checkout for unknown signup", slog.String("event_id", event.ID))
			return nil, nil
		}
		return nil, fmt.Errorf("find signup: %w", err)
	}
	if signup.IsPaid() {
		return nil, nil
	}

	paid, err := s.signups.Save(ctx, signup.MarkPaid(event.AmountTotal, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("save signup: %w", err)
	}
	return []task.Task{
		task.NewEarlyAccessConfirmation(paid.ID()),
		task.NewAnalyticsCapture("early_access_paid", paid.Email(), map[string]any{
			"amount_cents": paid.AmountCents(),
		}),
	}, nil
}

func (s *Billing) cancelSubscription(ctx context.Context, event billing.Event) error {
	if event.CustomerID == "" {
		return nil
	}
	b, err := s.businesses.FindOne(ctx, business.WithCustomerRef(event.CustomerID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "subscription canceled for unknown customer", slog.String("event_id", event.ID))
			return nil
		}
		return fmt.Errorf("find business: %w", err)
	}
	if _, err := s.businesses.Save(ctx, b.Cancel()); err != nil {
		return fmt.Errorf("save business: %w", err)
	}
	s.logger.InfoContext(ctx, "subscription canceled", slog.Int64("business_id", b.ID()))
	return nil
}
