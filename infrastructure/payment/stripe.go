// Package payment talks to the hosted payment provider: it opens checkout
// sessions and verifies signed webhooks.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
)

const currency = "usd"

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeGateway creates Stripe checkout sessions over the REST API.
type StripeGateway struct {
	http       *resty.Client
	configured bool
	logger     *slog.Logger
}

// NewStripeGateway creates a gateway from cfg.
func NewStripeGateway(cfg config.PaymentConfig, logger *slog.Logger) *StripeGateway {
	ep := cfg.Endpoint()
	client := resty.New().
		SetBaseURL(ep.BaseURL()).
		SetTimeout(ep.Timeout()).
		SetRetryCount(ep.MaxRetries()).
		SetAuthToken(ep.APIKey()).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == 429 || r.StatusCode() >= 500
		})
	return &StripeGateway{http: client, configured: ep.IsConfigured(), logger: logger}
}

// CreateCheckoutSession opens a hosted checkout page for req.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (billing.CheckoutSession, error) {
	if !g.configured {
		return billing.CheckoutSession{}, fmt.Errorf("payments: %w", service.ErrNotConfigured)
	}
	form, err := checkoutForm(req)
	if err != nil {
		return billing.CheckoutSession{}, err
	}

	var (
		result  sessionResponse
		failure errorResponse
	)
	resp, err := g.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetResult(&result).
		SetError(&failure).
		Post("/v1/checkout/sessions")
	if err != nil {
		return billing.CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	if resp.IsError() {
		return billing.CheckoutSession{}, fmt.Errorf("create checkout session: status %d: %s", resp.StatusCode(), failure.Error.Message)
	}

	g.logger.DebugContext(ctx, "checkout session created",
		slog.String("session_id", result.ID),
		slog.String("kind", string(req.Kind)),
	)
	return billing.CheckoutSession{ID: result.ID, URL: result.URL}, nil
}

// checkoutForm encodes req in the provider's bracketed form syntax.
func checkoutForm(req billing.CheckoutRequest) (url.Values, error) {
	form := url.Values{}
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	if req.CustomerEmail != "" {
		form.Set("customer_email", req.CustomerEmail)
	}

	switch req.Kind {
	case billing.KindSubscription:
		form.Set("mode", "subscription")
	case billing.KindEarlyAccess:
		form.Set("mode", "payment")
	default:
		return nil, fmt.Errorf("unknown checkout kind %q", req.Kind)
	}

	form.Set("line_items[0][quantity]", "1")
	switch {
	case req.PriceID != "":
		form.Set("line_items[0][price]", req.PriceID)
	case req.AmountCents > 0 && req.Kind == billing.KindEarlyAccess:
		form.Set("line_items[0][price_data][currency]", currency)
		form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
		name := req.ProductName
		if name == "" {
			name = "Early access"
		}
		form.Set("line_items[0][price_data][product_data][name]", name)
	default:
		return nil, fmt.Errorf("checkout %s: %w: no price", req.Kind, service.ErrNotConfigured)
	}

	keys := make([]string, 0, len(req.Metadata))
	for k := range req.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		form.Set("metadata["+k+"]", req.Metadata[k])
		if req.Kind == billing.KindSubscription {
			form.Set("subscription_data[metadata]["+k+"]", req.Metadata[k])
		}
	}
	return form, nil
}
