// Package log builds the slog loggers used across the service and carries
// request-scoped identifiers through context.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/reviewfunnel/funnel/internal/config"
)

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	requestIDKey
	userIDKey
)

// New creates a logger writing to w. Every record logged with a context
// gains the correlation, request and user ids stored on that context.
func New(w io.Writer, format config.LogFormat, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var base slog.Handler
	switch format {
	case config.LogFormatJSON:
		base = slog.NewJSONHandler(w, opts)
	default:
		base = NewPrettyHandler(w, opts)
	}
	return slog.New(contextHandler{Handler: base})
}

// FromConfig creates a stdout logger from application configuration.
func FromConfig(cfg config.AppConfig) *slog.Logger {
	return New(os.Stdout, cfg.LogFormat(), cfg.LogLevel())
}

// Configure creates a logger from cfg and installs it as the slog default.
func Configure(cfg config.AppConfig) *slog.Logger {
	l := FromConfig(cfg)
	slog.SetDefault(l)
	return l
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithCorrelationID stores a correlation id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithRequestID stores a request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithUserID stores the authenticated user id on ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// CorrelationID returns the correlation id on ctx, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// RequestID returns the request id on ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// UserID returns the user id on ctx, or 0.
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

type contextHandler struct {
	slog.Handler
}

func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := CorrelationID(ctx); id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if id := UserID(ctx); id != 0 {
		r.AddAttrs(slog.Int64("user_id", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{Handler: h.Handler.WithGroup(name)}
}
