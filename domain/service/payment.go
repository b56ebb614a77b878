package service

import (
	"context"
	"time"

	"github.com/reviewfunnel/funnel/domain/billing"
)

// PaymentGateway creates hosted checkout sessions.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (billing.CheckoutSession, error)
}

// WebhookVerifier authenticates and decodes provider webhooks.
type WebhookVerifier interface {
	// Verify checks signature against payload at now and decodes the event.
	// It returns an error matching billing.ErrInvalidSignature on failure.
	Verify(payload []byte, signature string, now time.Time) (billing.Event, error)
}
