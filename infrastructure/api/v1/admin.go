package v1

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/infrastructure/api/jsonapi"
	"github.com/reviewfunnel/funnel/infrastructure/api/middleware"
	"github.com/reviewfunnel/funnel/infrastructure/api/v1/dto"
)

// AdminRouter serves operator endpoints across every business and the
// sales funnel.
type AdminRouter struct {
	client *funnel.Client
	logger *slog.Logger
}

// NewAdminRouter creates a new AdminRouter.
func NewAdminRouter(client *funnel.Client) *AdminRouter {
	return &AdminRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for /admin endpoints. Callers must mount it
// behind middleware.RequireAuth and middleware.RequireAdmin.
func (r *AdminRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Route("/businesses", func(b chi.Router) {
		b.Get("/", r.ListBusinesses)
		b.Post("/", r.CreateBusiness)
		b.Get("/{id}", r.GetBusiness)
		b.Patch("/{id}", r.UpdateBusiness)
		b.Put("/{id}/slug", r.ChangeSlug)
		b.Delete("/{id}", r.DeleteBusiness)
	})
	router.Route("/leads", func(l chi.Router) {
		l.Get("/", r.ListLeads)
		l.Patch("/{id}", r.UpdateLeadStatus)
		l.Post("/{id}/convert", r.ConvertLead)
		l.Delete("/{id}", r.DeleteLead)
	})
	router.Route("/invites", func(i chi.Router) {
		i.Get("/", r.ListInvites)
		i.Post("/", r.GenerateInvites)
		i.Post("/{id}/revoke", r.RevokeInvite)
		i.Delete("/{id}", r.DeleteInvite)
	})
	router.Get("/early-access", r.ListEarlyAccess)
	router.Get("/exports/{kind}", r.Export)
	router.Post("/users/promote", r.PromoteUser)
	router.Get("/queue", r.QueueStatus)

	return router
}

// ListBusinesses handles GET /api/v1/admin/businesses.
func (r *AdminRouter) ListBusinesses(w http.ResponseWriter, req *http.Request) {
	sub, err := parseSubscription(req.URL.Query().Get("subscription"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	page, err := r.client.Businesses.List(req.Context(), service.BusinessListParams{
		PageParams:   pagination.PageParams(),
		Search:       req.URL.Query().Get("search"),
		Subscription: sub,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, paged(req, pagination, jsonapi.BusinessResources(page.Items), page.Total))
}

// CreateBusiness handles POST /api/v1/admin/businesses.
func (r *AdminRouter) CreateBusiness(w http.ResponseWriter, req *http.Request) {
	var body dto.BusinessCreateRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	biz, err := r.client.Businesses.Create(req.Context(), service.BusinessCreateParams{
		OwnerEmail: attrs.OwnerEmail,
		Name:       attrs.Name,
		Slug:       attrs.Slug,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(jsonapi.BusinessResource(biz)))
}

// GetBusiness handles GET /api/v1/admin/businesses/{id}.
func (r *AdminRouter) GetBusiness(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	biz, err := r.client.Businesses.ByID(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.BusinessResource(biz)))
}

// UpdateBusiness handles PATCH /api/v1/admin/businesses/{id}.
func (r *AdminRouter) UpdateBusiness(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
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

	biz, err := r.client.Businesses.Update(req.Context(), id, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.BusinessResource(biz)))
}

// ChangeSlug handles PUT /api/v1/admin/businesses/{id}/slug.
func (r *AdminRouter) ChangeSlug(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.SlugRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	biz, err := r.client.Businesses.ChangeSlug(req.Context(), id, body.Data.Attributes.Slug)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.BusinessResource(biz)))
}

// DeleteBusiness handles DELETE /api/v1/admin/businesses/{id}.
func (r *AdminRouter) DeleteBusiness(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Businesses.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLeads handles GET /api/v1/admin/leads.
func (r *AdminRouter) ListLeads(w http.ResponseWriter, req *http.Request) {
	status, err := parseLeadStatus(req.URL.Query().Get("status"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	page, err := r.client.Leads.List(req.Context(), service.LeadListParams{
		PageParams: pagination.PageParams(),
		Status:     status,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, paged(req, pagination, jsonapi.LeadResources(page.Items), page.Total))
}

// UpdateLeadStatus handles PATCH /api/v1/admin/leads/{id}.
func (r *AdminRouter) UpdateLeadStatus(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.LeadStatusRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	status, err := parseLeadStatus(body.Data.Attributes.Status)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if status == "" {
		middleware.WriteError(w, req, fmt.Errorf("%w: status is required", domain.ErrValidation), r.logger)
		return
	}

	l, err := r.client.Leads.UpdateStatus(req.Context(), id, status)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.LeadResource(l)))
}

// ConvertLead handles POST /api/v1/admin/leads/{id}/convert.
func (r *AdminRouter) ConvertLead(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	l, err := r.client.Leads.MarkConverted(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.LeadResource(l)))
}

// DeleteLead handles DELETE /api/v1/admin/leads/{id}.
func (r *AdminRouter) DeleteLead(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Leads.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInvites handles GET /api/v1/admin/invites.
func (r *AdminRouter) ListInvites(w http.ResponseWriter, req *http.Request) {
	status, err := parseInviteStatus(req.URL.Query().Get("status"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	page, err := r.client.Invites.List(req.Context(), service.InviteListParams{
		PageParams: pagination.PageParams(),
		Status:     status,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, paged(req, pagination, jsonapi.InviteResources(page.Items), page.Total))
}

// GenerateInvites handles POST /api/v1/admin/invites.
func (r *AdminRouter) GenerateInvites(w http.ResponseWriter, req *http.Request) {
	var body dto.InviteGenerateRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	attrs := body.Data.Attributes

	var expiresAt time.Time
	if attrs.ExpiresAt != nil {
		expiresAt = *attrs.ExpiresAt
	}
	codes, err := r.client.Invites.Generate(req.Context(), service.InviteGenerateParams{
		Count:     attrs.Count,
		Note:      attrs.Note,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewListResponse(jsonapi.InviteResources(codes)))
}

// RevokeInvite handles POST /api/v1/admin/invites/{id}/revoke.
func (r *AdminRouter) RevokeInvite(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	code, err := r.client.Invites.Revoke(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.InviteResource(code)))
}

// DeleteInvite handles DELETE /api/v1/admin/invites/{id}.
func (r *AdminRouter) DeleteInvite(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req, "id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Invites.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListEarlyAccess handles GET /api/v1/admin/early-access.
func (r *AdminRouter) ListEarlyAccess(w http.ResponseWriter, req *http.Request) {
	status, err := parseSignupStatus(req.URL.Query().Get("status"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	pagination := ParsePagination(req)
	page, err := r.client.EarlyAccess.List(req.Context(), service.EarlyAccessListParams{
		PageParams: pagination.PageParams(),
		Status:     status,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, paged(req, pagination, jsonapi.SignupResources(page.Items), page.Total))
}

// Export handles GET /api/v1/admin/exports/{kind}. The workbook is built
// in memory so failures still produce a JSON error.
func (r *AdminRouter) Export(w http.ResponseWriter, req *http.Request) {
	kind := service.ExportKind(chi.URLParam(req, "kind"))
	if !slices.Contains(service.ExportKinds(), kind) {
		middleware.WriteError(w, req, fmt.Errorf("%w: unknown export %q", domain.ErrNotFound, kind), r.logger)
		return
	}

	var buf bytes.Buffer
	if err := r.client.Exports.Write(req.Context(), kind, &buf); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", kind, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", r.client.Exports.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// PromoteUser handles POST /api/v1/admin/users/promote.
func (r *AdminRouter) PromoteUser(w http.ResponseWriter, req *http.Request) {
	var body dto.PromoteRequest
	if err := middleware.DecodeJSON(req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	user, err := r.client.Auth.Promote(req.Context(), body.Data.Attributes.Email)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(jsonapi.UserResource(user)))
}

// QueueStatus handles GET /api/v1/admin/queue.
func (r *AdminRouter) QueueStatus(w http.ResponseWriter, req *http.Request) {
	pending, err := r.client.Tasks.Count(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(
		jsonapi.NewResource("queue", "default", map[string]int64{"pending": pending}),
	))
}
