package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/review"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/infrastructure/api/jsonapi"
	"github.com/reviewfunnel/funnel/internal/log"
)

func TestAPIError(t *testing.T) {
	cause := errors.New("underlying")
	err := NewAPIError(http.StatusNotFound, "missing", cause)

	if err.Code() != http.StatusNotFound {
		t.Errorf("Code() = %v, want 404", err.Code())
	}
	if err.Message() != "missing" {
		t.Errorf("Message() = %v, want missing", err.Message())
	}
	if got := err.Error(); got != "api error 404: missing: underlying" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if got := NewAPIError(http.StatusTeapot, "tea", nil).Error(); got != "api error 418: tea" {
		t.Errorf("Error() without cause = %q", got)
	}
}

func TestAuthenticationError(t *testing.T) {
	err := NewAuthenticationError("missing bearer token")

	if !errors.Is(err, ErrAuthentication) {
		t.Error("errors.Is(err, ErrAuthentication) = false")
	}
	if !strings.Contains(err.Error(), "missing bearer token") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("find: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: email is required", domain.ErrValidation), http.StatusBadRequest},
		{review.ErrInvalidRating, http.StatusBadRequest},
		{billing.ErrInvalidSignature, http.StatusBadRequest},
		{lead.ErrInviteUnavailable, http.StatusBadRequest},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{NewAuthenticationError("x"), http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{business.ErrSlugExhausted, http.StatusServiceUnavailable},
		{domainservice.ErrNotConfigured, http.StatusServiceUnavailable},
		{NewAPIError(http.StatusTooManyRequests, "slow down", nil), http.StatusTooManyRequests},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			w := httptest.NewRecorder()

			WriteError(w, req, tt.err, slog.New(slog.DiscardHandler))

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != jsonapi.ContentType {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(log.WithCorrelationID(req.Context(), "corr-9"))
	w := httptest.NewRecorder()

	WriteError(w, req, errors.New("password=hunter2 leaked"), slog.New(slog.DiscardHandler))

	if strings.Contains(w.Body.String(), "hunter2") {
		t.Fatalf("body leaks the error: %s", w.Body.String())
	}
	var doc jsonapi.Document
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Errors) != 1 {
		t.Fatalf("errors = %d, want 1", len(doc.Errors))
	}
	if got := doc.Errors[0].Meta["correlation_id"]; got != "corr-9" {
		t.Errorf("correlation_id = %v", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"joe"}`))
	if err := DecodeJSON(req, &v); err != nil || v.Name != "joe" {
		t.Errorf("DecodeJSON() = %v, name %q", err, v.Name)
	}

	for _, body := range []string{`{"name":`, `{"unknown":1}`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := DecodeJSON(req, &v); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("DecodeJSON(%q) = %v, want ErrValidation", body, err)
		}
	}
}
