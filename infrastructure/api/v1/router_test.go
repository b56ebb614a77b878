package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	funnel "github.com/reviewfunnel/funnel"
	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/domain/billing"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/infrastructure/api/middleware"
	v1 "github.com/reviewfunnel/funnel/infrastructure/api/v1"
	"github.com/reviewfunnel/funnel/infrastructure/auth"
	"github.com/reviewfunnel/funnel/internal/config"
	"github.com/reviewfunnel/funnel/internal/log"
)

const adminEmail = "ops@example.com"

type discardMailer struct{}

func (discardMailer) Send(context.Context, domainservice.Email) (string, error) { return "id", nil }

type discardAnalytics struct{}

func (discardAnalytics) Capture(context.Context, domainservice.AnalyticsEvent) error { return nil }

type fixedGateway struct{}

func (fixedGateway) CreateCheckoutSession(_ context.Context, req billing.CheckoutRequest) (billing.CheckoutSession, error) {
	return billing.CheckoutSession{ID: "cs_" + string(req.Kind), URL: "https://pay.example.com/" + string(req.Kind)}, nil
}

func newTestClient(t *testing.T) *funnel.Client {
	t.Helper()
	cfg := config.NewAppConfigWithOptions(
		config.WithAuthConfig(config.NewAuthConfig().WithAdminEmails([]string{adminEmail})),
		config.WithPaymentConfig(config.NewPaymentConfig().WithPrices("price_sub", "price_early")),
	)
	client, err := funnel.New(
		funnel.WithSQLite(":memory:"),
		funnel.WithConfig(cfg),
		funnel.WithLogger(log.Discard()),
		funnel.WithoutWorker(),
		funnel.WithMailer(discardMailer{}),
		funnel.WithAnalytics(discardAnalytics{}),
		funnel.WithPaymentGateway(fixedGateway{}),
		funnel.WithPasswordHasher(auth.NewBcryptHasherWithCost(bcrypt.MinCost)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newRouter(client *funnel.Client) http.Handler {
	logger := client.Logger()
	router := chi.NewRouter()
	router.Mount("/", v1.NewPublicRouter(client).Routes())
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(client.Auth, logger))
		r.Mount("/me", v1.NewOwnerRouter(client).Routes())
		r.With(middleware.RequireAdmin(logger)).Mount("/admin", v1.NewAdminRouter(client).Routes())
	})
	return router
}

func register(t *testing.T, client *funnel.Client, email, name string) string {
	t.Helper()
	result, err := client.Signup.Register(context.Background(), service.SignupParams{
		Email:        email,
		Password:     "password123",
		BusinessName: name,
	})
	require.NoError(t, err)
	return result.Session.Token
}

func request(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func body(attrs string) string {
	return `{"data":{"type":"request","attributes":` + attrs + `}}`
}

type listDocument struct {
	Data []struct {
		ID         string         `json:"id"`
		Attributes map[string]any `json:"attributes"`
	} `json:"data"`
	Meta  map[string]any    `json:"meta"`
	Links map[string]string `json:"links"`
}

type singleDocument struct {
	Data struct {
		ID         string         `json:"id"`
		Attributes map[string]any `json:"attributes"`
	} `json:"data"`
	Meta map[string]any `json:"meta"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listDocument {
	t.Helper()
	var doc listDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc), w.Body.String())
	return doc
}

func decodeSingle(t *testing.T, w *httptest.ResponseRecorder) singleDocument {
	t.Helper()
	var doc singleDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc), w.Body.String())
	return doc
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query        string
		page, size   int
		limit, offst int
	}{
		{"", 1, 20, 20, 0},
		{"page=3&page_size=10", 3, 10, 10, 20},
		{"page=0&page_size=-1", 1, 20, 20, 0},
		{"page_size=500", 1, 100, 100, 0},
		{"page=abc", 1, 20, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := v1.ParsePagination(httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))

			assert.Equal(t, tt.page, p.Page())
			assert.Equal(t, tt.size, p.PageSize())
			assert.Equal(t, service.PageParams{Limit: tt.limit, Offset: tt.offst}, p.PageParams())
		})
	}
}

func TestPublicRouter_LoginAndPasswordReset(t *testing.T) {
	client := newTestClient(t)
	register(t, client, "joe@example.com", "Joe's Auto")
	h := newRouter(client)

	w := request(t, h, http.MethodPost, "/login", "", body(`{"email":"joe@example.com","password":"password123"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := decodeSingle(t, w)
	assert.NotEmpty(t, session.Data.Attributes["token"])
	assert.NotZero(t, session.Data.Attributes["business_id"])

	w = request(t, h, http.MethodPost, "/login", "", body(`{"email":"joe@example.com","password":"wrong-password"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, email := range []string{"joe@example.com", "nobody@example.com"} {
		w = request(t, h, http.MethodPost, "/password-reset", "", body(fmt.Sprintf(`{"email":%q}`, email)))
		assert.Equal(t, http.StatusAccepted, w.Code, email)
	}

	w = request(t, h, http.MethodPost, "/password-reset/confirm", "", body(`{"token":"made-up","password":"password456"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicRouter_RejectsMalformedBodies(t *testing.T) {
	h := newRouter(newTestClient(t))

	w := request(t, h, http.MethodPost, "/leads", "", `{"data":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, h, http.MethodPost, "/leads", "", body(`{"email":"not-an-email"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicRouter_EarlyAccess(t *testing.T) {
	h := newRouter(newTestClient(t))

	w := request(t, h, http.MethodPost, "/early-access", "", body(`{"email":"early@example.com","name":"Ann"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	doc := decodeSingle(t, w)
	assert.Equal(t, "pending", doc.Data.Attributes["status"])
	assert.Equal(t, "https://pay.example.com/early_access", doc.Meta["checkout_url"])
}

func TestOwnerRouter_BusinessAndTemplates(t *testing.T) {
	client := newTestClient(t)
	token := register(t, client, "joe@example.com", "Joe's Auto")
	h := newRouter(client)

	w := request(t, h, http.MethodPatch, "/me/business", token,
		body(`{"brand_color":"#112233","platform_urls":{"google":"https://g.page/joes"},"notify_on_feedback":false}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	attrs := decodeSingle(t, w).Data.Attributes
	assert.Equal(t, "#112233", attrs["brand_color"])
	assert.Equal(t, false, attrs["notify_on_feedback"])
	assert.Equal(t, "joe-s-auto", attrs["slug"])

	w = request(t, h, http.MethodPatch, "/me/business", token, body(`{"platform_urls":{"myspace":"https://x"}}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, h, http.MethodGet, "/me/templates", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	templates := decodeList(t, w)
	require.Len(t, templates.Data, 3)
	var googleURL any
	for _, tpl := range templates.Data {
		if tpl.ID == "google" {
			googleURL = tpl.Attributes["review_url"]
		}
	}
	assert.Equal(t, "https://g.page/joes", googleURL)

	w = request(t, h, http.MethodPut, "/me/templates/yelp", token, body(`{"body":"Great tires at {{business}}"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Great tires at {{business}}", decodeSingle(t, w).Data.Attributes["body"])

	w = request(t, h, http.MethodPost, "/me/templates/reset", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	for _, tpl := range decodeList(t, w).Data {
		assert.NotContains(t, tpl.Attributes["body"], "Great tires")
	}

	w = request(t, h, http.MethodPut, "/me/survey", token, body(`{"industry":"auto","monthly_customers":"50-100","heard_about":"friend"}`))
	require.Equal(t, http.StatusOK, w.Code)
	survey, _ := decodeSingle(t, w).Data.Attributes["survey"].(map[string]any)
	assert.Equal(t, true, survey["completed"])

	w = request(t, h, http.MethodPost, "/me/checkout", token, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "https://pay.example.com/subscription", decodeSingle(t, w).Data.Attributes["url"])
}

func TestPublicRouter_MixedCaseReviewLink(t *testing.T) {
	client := newTestClient(t)
	register(t, client, "joe@example.com", "Joe's Auto Repair")
	h := newRouter(client)

	w := request(t, h, http.MethodGet, "/r/Joe-S-Auto-Repair", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(t, h, http.MethodPost, "/r/Joe-S-Auto-Repair/ratings", "", body(`{"rating":5}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "templates", decodeSingle(t, w).Data.Attributes["route"])

	w = request(t, h, http.MethodPost, "/r/JOE-S-AUTO-REPAIR/feedback", "", body(`{"rating":2,"message":"Slow service"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	b, err := client.Businesses.BySlug(context.Background(), "joe-s-auto-repair")
	require.NoError(t, err)
	summary, err := client.Reviews.Summary(context.Background(), b.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalReviews())
	assert.Equal(t, int64(1), summary.TotalFeedback())
}

func TestOwnerRouter_ResolveFeedback(t *testing.T) {
	client := newTestClient(t)
	token := register(t, client, "joe@example.com", "Joe's Auto")
	h := newRouter(client)

	fb, err := client.Reviews.SubmitFeedback(context.Background(), "joe-s-auto", service.FeedbackParams{Rating: 1, Message: "Rude"})
	require.NoError(t, err)

	path := fmt.Sprintf("/me/feedback/%d", fb.ID())
	w := request(t, h, http.MethodPatch, path, token, body(`{"resolved":true}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decodeSingle(t, w).Data.Attributes["resolved"])

	w = request(t, h, http.MethodGet, "/me/feedback?resolved=false", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeList(t, w).Data)

	w = request(t, h, http.MethodGet, "/me/feedback?resolved=maybe", token, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Another owner cannot touch it.
	other := register(t, client, "ann@example.com", "Ann's Bakery")
	w = request(t, h, http.MethodPatch, path, other, body(`{"resolved":false}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRouter_Invites(t *testing.T) {
	client := newTestClient(t)
	admin := register(t, client, adminEmail, "Ops")
	h := newRouter(client)

	w := request(t, h, http.MethodPost, "/admin/invites", admin, body(`{"count":3,"note":"beta"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	codes := decodeList(t, w).Data
	require.Len(t, codes, 3)
	code, _ := codes[0].Attributes["code"].(string)

	w = request(t, h, http.MethodGet, "/invites/"+code, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeSingle(t, w).Data.Attributes["valid"])

	w = request(t, h, http.MethodPost, "/admin/invites/"+codes[0].ID+"/revoke", admin, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "revoked", decodeSingle(t, w).Data.Attributes["status"])

	w = request(t, h, http.MethodGet, "/invites/"+code, "", "")
	assert.Equal(t, false, decodeSingle(t, w).Data.Attributes["valid"])

	w = request(t, h, http.MethodGet, "/admin/invites?status=unused", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeList(t, w).Meta["total_count"])

	w = request(t, h, http.MethodGet, "/admin/invites?status=bogus", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, h, http.MethodPost, "/admin/invites", admin, body(`{"count":101}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, h, http.MethodDelete, "/admin/invites/"+codes[1].ID, admin, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAdminRouter_Leads(t *testing.T) {
	client := newTestClient(t)
	admin := register(t, client, adminEmail, "Ops")
	h := newRouter(client)

	w := request(t, h, http.MethodPost, "/leads", "", body(`{"email":"prospect@example.com","name":"Pat","source":"landing"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decodeSingle(t, w).Data.ID

	w = request(t, h, http.MethodGet, "/admin/leads?status=new", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w).Data, 1)

	w = request(t, h, http.MethodPatch, "/admin/leads/"+id, admin, body(`{"status":"contacted"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "contacted", decodeSingle(t, w).Data.Attributes["status"])

	w = request(t, h, http.MethodPatch, "/admin/leads/"+id, admin, body(`{"status":"sideways"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, h, http.MethodPost, "/admin/leads/"+id+"/convert", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	attrs := decodeSingle(t, w).Data.Attributes
	assert.Equal(t, "converted", attrs["status"])
	assert.NotEmpty(t, attrs["converted_at"])

	w = request(t, h, http.MethodDelete, "/admin/leads/"+id, admin, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(t, h, http.MethodDelete, "/admin/leads/"+id, admin, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(t, h, http.MethodDelete, "/admin/leads/abc", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRouter_Businesses(t *testing.T) {
	client := newTestClient(t)
	admin := register(t, client, adminEmail, "Ops")
	h := newRouter(client)

	w := request(t, h, http.MethodPost, "/admin/businesses", admin, body(`{"owner_email":"new@example.com","name":"Corner Cafe"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeSingle(t, w).Data
	assert.Equal(t, "corner-cafe", created.Attributes["slug"])

	w = request(t, h, http.MethodPut, "/admin/businesses/"+created.ID+"/slug", admin, body(`{"slug":"admin"}`))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(t, h, http.MethodPut, "/admin/businesses/"+created.ID+"/slug", admin, body(`{"slug":"the-corner"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "the-corner", decodeSingle(t, w).Data.Attributes["slug"])

	w = request(t, h, http.MethodGet, "/admin/businesses?search=corner", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w).Data, 1)

	w = request(t, h, http.MethodGet, "/admin/businesses?subscription=gold", admin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, h, http.MethodPost, "/admin/users/promote", admin, body(`{"email":"new@example.com"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "admin", decodeSingle(t, w).Data.Attributes["role"])

	w = request(t, h, http.MethodDelete, "/admin/businesses/"+created.ID, admin, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = request(t, h, http.MethodGet, "/admin/businesses/"+created.ID, admin, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = request(t, h, http.MethodGet, "/admin/queue", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decodeSingle(t, w).Data.Attributes["pending"])
}
