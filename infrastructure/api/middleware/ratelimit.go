package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	domainservice "github.com/reviewfunnel/funnel/domain/service"
)

// RateLimit throttles requests per client address under scope. A nil
// limiter disables it. Limiter outages let requests through.
func RateLimit(limiter domainservice.RateLimiter, scope string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientAddr(r)
			allowed, remaining, reset, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(reset.Seconds()))))
				WriteError(w, r, NewAPIError(http.StatusTooManyRequests, "too many requests, try again later", nil), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
