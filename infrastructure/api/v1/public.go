// Package v1 provides the v1 API routes.
package v1

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/infrastructure/api/jsonapi"
	"github.com/reviewfunnel/funnel/infrastructure/api/middleware"
	"github.com/reviewfunnel/funnel/infrastructure/api/v1/dto"
	"github.com/reviewfunnel/funnel/infrastructure/payment"
)

// maxWebhookBytes caps webhook payloads.
const maxWebhookBytes = 1 << 20

// PublicRouter serves the unauthenticated endpoints: account creation,
// sign-in, the customer review page and funnel capture forms.
type PublicRouter struct {
	client *funnel.Client
	logger *slog.Logger
}

// NewPublicRouter creates a new PublicRouter.
func NewPublicRouter(client *funnel.Client) *PublicRouter {
	return &PublicRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for public endpoints. Form submissions are
// throttled per client address when a rate limiter is configured.
func (r *PublicRouter) Routes() chi.Router {
	router := chi.NewRouter()
	limiter := r.client.RateLimiter()

	router.Get("/r/{slug}", r.GetBusiness)
	router.Get("/invites/{code}", r.ValidateInvite)
	router.Post("/webhooks/payments", r.PaymentWebhook)

	router.Group(func(g chi.Router) {
		g.Use(middleware.RateLimit(limiter, "auth", r.logger))
		g.Post("/signup", r.Signup)
		g.Post("/login", r.Login)
		g.Post("/password-reset", r.RequestPasswordReset)
		g.Post("/password-reset/confirm", r.ConfirmPasswordReset)
	})

	router.Group(func(g chi.Router) {
		g.Use(middleware.RateLimit(limiter, "public", r.logger))
		g.Post("/r/{slug}/ratings", r.Rate)
		g.Post("/r/{slug}/feedback", r.SubmitFeedback)
		g.Post("/leads", r.CaptureLead)
		g.Post("/early-access", r.JoinEarlyAccess)
	})

	return router
}

// Signup handles POST /api/v1/signup.
func (r *PublicRouter) Signup(w http.ResponseWriter, req *http.Request) {
	var body dto.SignupRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	result, err := r.client.Signup.Register(req.Context(), service.SignupParams{
		Email:        attrs.Email,
		Password:     attrs.Password,
		BusinessName: attrs.BusinessName,
		InviteCode:   attrs.InviteCode,
		Source:       attrs.Source,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	s := result.Session
	doc := jsonapi.NewSingleResponse(jsonapi.SessionResource(s.User, s.Token, s.ExpiresAt, result.Business.ID()))
	doc.Included = []*jsonapi.Resource{jsonapi.BusinessResource(result.Business)}
	middleware.WriteJSON(w, http.StatusCreated, doc)
}

// Login handles POST /api/v1/login.
func (r *PublicRouter) Login(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.LoginRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	session, err := r.client.Auth.Login(ctx, body.Data.Attributes.Email, body.Data.Attributes.Password)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	// Operators may have no business of their own.
	var businessID int64
	biz, err := r.client.Businesses.ForOwner(ctx, session.User.ID())
	switch {
	case err == nil:
		businessID = biz.ID()
	case !errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		jsonapi.SessionResource(session.User, session.Token, session.ExpiresAt, businessID),
	))
}

// RequestPasswordReset handles POST /api/v1/password-reset. It answers 202
// whether or not the address has an account.
func (r *PublicRouter) RequestPasswordReset(w http.ResponseWriter, req *http.Request) {
	var body dto.PasswordResetRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Auth.RequestPasswordReset(req.Context(), body.Data.Attributes.Email); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ConfirmPasswordReset handles POST /api/v1/password-reset/confirm.
func (r *PublicRouter) ConfirmPasswordReset(w http.ResponseWriter, req *http.Request) {
	var body dto.PasswordResetConfirmRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	attrs := body.Data.Attributes
	if err := r.client.Auth.ResetPassword(req.Context(), attrs.Token, attrs.Password); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBusiness handles GET /api/v1/r/{slug}.
func (r *PublicRouter) GetBusiness(w http.ResponseWriter, req *http.Request) {
	biz, err := r.client.Businesses.BySlug(req.Context(), chi.URLParam(req, "slug"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.PublicBusinessResource(biz)))
}

// Rate handles POST /api/v1/r/{slug}/ratings.
func (r *PublicRouter) Rate(w http.ResponseWriter, req *http.Request) {
	var body dto.RatingRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	result, err := r.client.Reviews.Rate(req.Context(), chi.URLParam(req, "slug"), body.Data.Attributes.Rating)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(
		jsonapi.RatingResource(result.Review, result.Business, result.Templates),
	))
}

// SubmitFeedback handles POST /api/v1/r/{slug}/feedback.
func (r *PublicRouter) SubmitFeedback(w http.ResponseWriter, req *http.Request) {
	var body dto.FeedbackRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	fb, err := r.client.Reviews.SubmitFeedback(req.Context(), chi.URLParam(req, "slug"), service.FeedbackParams{
		Rating:  attrs.Rating,
		Message: attrs.Message,
		Name:    attrs.Name,
		Email:   attrs.Email,
		Phone:   attrs.Phone,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(jsonapi.FeedbackResource(fb)))
}

// CaptureLead handles POST /api/v1/leads.
func (r *PublicRouter) CaptureLead(w http.ResponseWriter, req *http.Request) {
	var body dto.LeadRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	l, err := r.client.Leads.Capture(req.Context(), attrs.Email, lead.Details{
		Name:         attrs.Name,
		BusinessName: attrs.BusinessName,
		Phone:        attrs.Phone,
		Source:       attrs.Source,
		Message:      attrs.Message,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(jsonapi.LeadResource(l)))
}

// ValidateInvite handles GET /api/v1/invites/{code}.
func (r *PublicRouter) ValidateInvite(w http.ResponseWriter, req *http.Request) {
	code := chi.URLParam(req, "code")
	valid, err := r.client.Invites.Validate(req.Context(), code)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		jsonapi.NewResource(jsonapi.TypeInviteCheck, strings.ToUpper(code), map[string]bool{"valid": valid}),
	))
}

// JoinEarlyAccess handles POST /api/v1/early-access.
func (r *PublicRouter) JoinEarlyAccess(w http.ResponseWriter, req *http.Request) {
	var body dto.EarlyAccessRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	signup, checkout, err := r.client.EarlyAccess.Join(req.Context(), service.EarlyAccessParams{
		Email:        attrs.Email,
		Name:         attrs.Name,
		BusinessName: attrs.BusinessName,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	doc := jsonapi.NewSingleResponse(jsonapi.SignupResource(signup))
	doc.Meta = jsonapi.Meta{"checkout_url": checkout.URL}
	middleware.WriteJSON(w, http.StatusCreated, doc)
}

// PaymentWebhook handles POST /api/v1/webhooks/payments. The body is passed
// through untouched because the signature covers the raw bytes.
func (r *PublicRouter) PaymentWebhook(w http.ResponseWriter, req *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBytes))
	if err != nil {
		middleware.WriteError(w, req, fmt.Errorf("%w: read body: %v", domain.ErrValidation, err), r.logger)
		return
	}

	result, err := r.client.Billing.HandleWebhook(req.Context(), payload, req.Header.Get(payment.SignatureHeader))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		jsonapi.NewResource(jsonapi.TypeWebhook, result.EventID, &jsonapi.WebhookAttributes{
			Type:      result.Type,
			Duplicate: result.Duplicate,
		}),
	))
}

// principal returns the caller resolved by middleware.RequireAuth.
func principal(req *http.Request) account.Principal {
	return middleware.PrincipalFrom(req.Context())
}
