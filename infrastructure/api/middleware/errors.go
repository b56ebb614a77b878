package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/review"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/infrastructure/api/jsonapi"
	"github.com/reviewfunnel/funnel/internal/log"
)

// maxBodyBytes caps request bodies read by DecodeJSON.
const maxBodyBytes = 1 << 20

// ErrAuthentication is matched by every AuthenticationError.
var ErrAuthentication = errors.New("authentication failed")

// APIError carries an explicit HTTP status.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates an APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Code returns the HTTP status.
func (e *APIError) Code() int { return e.code }

// Message returns the client-facing message.
func (e *APIError) Message() string { return e.message }

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the cause.
func (e *APIError) Unwrap() error { return e.cause }

// AuthenticationError is a missing or bad bearer token.
type AuthenticationError struct {
	reason string
}

// NewAuthenticationError creates an AuthenticationError.
func NewAuthenticationError(reason string) *AuthenticationError {
	return &AuthenticationError{reason: reason}
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.reason
}

// Is matches ErrAuthentication.
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// status maps err to an HTTP status and whether its text is safe to show.
func status(err error) (int, bool) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.code, apiErr.code < http.StatusInternalServerError
	case errors.Is(err, ErrAuthentication), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, true
	case errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, billing.ErrInvalidSignature),
		errors.Is(err, lead.ErrInviteUnavailable),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, true
	case errors.Is(err, business.ErrSlugExhausted), errors.Is(err, domainservice.ErrNotConfigured):
		return http.StatusServiceUnavailable, false
	default:
		return http.StatusInternalServerError, false
	}
}

// WriteError writes err as a JSON:API error document. Server errors are
// logged and their text withheld from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	code, expose := status(err)
	ctx := r.Context()

	detail := http.StatusText(code)
	if expose {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			detail = apiErr.message
		} else {
			detail = err.Error()
		}
	}

	if code >= http.StatusInternalServerError {
		logger.ErrorContext(ctx, "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", code),
			slog.String("error", err.Error()),
		)
	}

	WriteJSON(w, code, jsonapi.NewErrorResponse(code, detail, log.CorrelationID(ctx)))
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", jsonapi.ContentType)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a JSON body into v. Malformed bodies are validation
// errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}
	return nil
}
