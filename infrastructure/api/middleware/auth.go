package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/internal/log"
)

type principalKey struct{}

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (account.Principal, error)
}

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p account.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the authenticated principal, or a zero Principal.
func PrincipalFrom(ctx context.Context) account.Principal {
	p, _ := ctx.Value(principalKey{}).(account.Principal)
	return p
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth rejects requests without a valid bearer token and stores the
// principal on the request context.
func RequireAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				WriteError(w, r, NewAuthenticationError("missing bearer token"), logger)
				return
			}
			principal, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound) {
					WriteError(w, r, NewAuthenticationError("invalid or expired token"), logger)
					return
				}
				WriteError(w, r, err, logger)
				return
			}
			ctx := WithPrincipal(r.Context(), principal)
			ctx = log.WithUserID(ctx, principal.UserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects principals that are not operators. It must run after
// RequireAuth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFrom(r.Context())
			if p.IsZero() {
				WriteError(w, r, NewAuthenticationError("missing bearer token"), logger)
				return
			}
			if !p.IsAdmin() {
				WriteError(w, r, NewAPIError(http.StatusForbidden, "admin access required", domain.ErrForbidden), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
