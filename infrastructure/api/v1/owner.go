package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/infrastructure/api/jsonapi"
	"github.com/reviewfunnel/funnel/infrastructure/api/middleware"
	"github.com/reviewfunnel/funnel/infrastructure/api/v1/dto"
)

// OwnerRouter serves a signed-in owner's own account and business. Every
// handler resolves the business from the caller, never from the URL.
type OwnerRouter struct {
	client *funnel.Client
	logger *slog.Logger
}

// NewOwnerRouter creates a new OwnerRouter.
func NewOwnerRouter(client *funnel.Client) *OwnerRouter {
	return &OwnerRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for /me endpoints. Callers must mount it
// behind middleware.RequireAuth.
func (r *OwnerRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.GetUser)
	router.Put("/password", r.ChangePassword)
	router.Get("/business", r.GetBusiness)
	router.Patch("/business", r.UpdateBusiness)
	router.Put("/survey", r.UpdateSurvey)
	router.Get("/templates", r.ListTemplates)
	router.Put("/templates/{platform}", r.SaveTemplate)
	router.Post("/templates/reset", r.ResetTemplates)
	router.Get("/reviews", r.ListReviews)
	router.Get("/feedback", r.ListFeedback)
	router.Patch("/feedback/{id}", r.ResolveFeedback)
	router.Get("/summary", r.Summary)
	router.Post("/checkout", r.Checkout)

	return router
}

func (r *OwnerRouter) business(req *http.Request) (business.Business, error) {
	return r.client.Businesses.ForOwner(req.Context(), principal(req).UserID())
}

// GetUser handles GET /api/v1/me.
func (r *OwnerRouter) GetUser(w http.ResponseWriter, req *http.Request) {
	user, err := r.client.Auth.User(req.Context(), principal(req).UserID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	doc := jsonapi.NewSingleResponse(jsonapi.UserResource(user))
	doc.Meta = jsonapi.Meta{"admin": principal(req).IsAdmin()}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// ChangePassword handles PUT /api/v1/me/password.
func (r *OwnerRouter) ChangePassword(w http.ResponseWriter, req *http.Request) {
	var body dto.PasswordChangeRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	if err := r.client.Auth.ChangePassword(req.Context(), principal(req).UserID(), attrs.CurrentPassword, attrs.Password); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetBusiness handles GET /api/v1/me/business.
func (r *OwnerRouter) GetBusiness(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.BusinessResource(biz)))
}

// UpdateBusiness handles PATCH /api/v1/me/business.
func (r *OwnerRouter) UpdateBusiness(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.BusinessUpdateRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	params, err := businessUpdateParams(body.Data.Attributes)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	updated, err := r.client.Businesses.Update(req.Context(), biz.ID(), params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.BusinessResource(updated)))
}

// UpdateSurvey handles PUT /api/v1/me/survey.
func (r *OwnerRouter) UpdateSurvey(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.SurveyRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	updated, err := r.client.Businesses.UpdateSurvey(req.Context(), biz.ID(),
		business.NewSurvey(attrs.Industry, attrs.MonthlyCustomers, attrs.HeardAbout))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.BusinessResource(updated)))
}

// ListTemplates handles GET /api/v1/me/templates.
func (r *OwnerRouter) ListTemplates(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	templates, err := r.client.Reviews.Templates(req.Context(), biz.ID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.TemplatesResponse(templates, biz.PlatformURLs()))
}

// SaveTemplate handles PUT /api/v1/me/templates/{platform}.
func (r *OwnerRouter) SaveTemplate(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.TemplateRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	saved, err := r.client.Reviews.SaveTemplate(req.Context(), biz.ID(), chi.URLParam(req, "platform"), body.Data.Attributes.Body)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.TemplateResource(saved)))
}

// ResetTemplates handles POST /api/v1/me/templates/reset.
func (r *OwnerRouter) ResetTemplates(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	templates, err := r.client.Reviews.ResetTemplates(req.Context(), biz.ID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.TemplatesResponse(templates, biz.PlatformURLs()))
}

// ListReviews handles GET /api/v1/me/reviews.
func (r *OwnerRouter) ListReviews(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	page, err := r.client.Reviews.ListReviews(req.Context(), biz.ID(), pagination.PageParams())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, paged(req, pagination, jsonapi.ReviewResources(page.Items), page.Total))
}

// ListFeedback handles GET /api/v1/me/feedback.
func (r *OwnerRouter) ListFeedback(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	resolved, err := queryBool(req, "resolved")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	page, err := r.client.Reviews.ListFeedback(req.Context(), biz.ID(), service.FeedbackListParams{
		PageParams: pagination.PageParams(),
		Resolved:   resolved,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, paged(req, pagination, jsonapi.FeedbackResources(page.Items), page.Total))
}

// ResolveFeedback handles PATCH /api/v1/me/feedback/{id}.
func (r *OwnerRouter) ResolveFeedback(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.FeedbackResolveRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	fb, err := r.client.Reviews.ResolveFeedback(req.Context(), biz.ID(), id, body.Data.Attributes.Resolved)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.FeedbackResource(fb)))
}

// Summary handles GET /api/v1/me/summary.
func (r *OwnerRouter) Summary(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	summary, err := r.client.Reviews.Summary(req.Context(), biz.ID())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.SummaryResource(biz.ID(), summary)))
}

// Checkout handles POST /api/v1/me/checkout.
func (r *OwnerRouter) Checkout(w http.ResponseWriter, req *http.Request) {
	biz, err := r.business(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	session, err := r.client.Billing.SubscriptionCheckout(req.Context(), biz.ID(), principal(req).Email())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(jsonapi.CheckoutResource(session)))
}

func businessUpdateParams(attrs dto.BusinessUpdateAttributes) (service.BusinessUpdateParams, error) {
	urls, err := platformUpdates(attrs.PlatformURLs)
	if err != nil {
		return service.BusinessUpdateParams{}, err
	}
	return service.BusinessUpdateParams{
		Name:             attrs.Name,
		BrandColor:       attrs.BrandColor,
		LogoURL:          attrs.LogoURL,
		PlatformURLs:     urls,
		NotifyOnFeedback: attrs.NotifyOnFeedback,
	}, nil
}
