package email

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
)

// LogMailer logs email instead of sending it. Used when no API key is set.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs e.
func (m *LogMailer) Send(ctx context.Context, e service.Email) (string, error) {
	id := "log-" + uuid.NewString()
	m.logger.InfoContext(ctx, "email not sent: no email provider configured",
		slog.String("message_id", id),
		slog.String("to", strings.Join(e.To(), ",")),
		slog.String("subject", e.Subject()),
		slog.String("tag", e.Tag()),
	)
	m.logger.DebugContext(ctx, "email body", slog.String("text", e.Text()))
	return id, nil
}

// New returns a Resend mailer when an API key is configured and a LogMailer
// otherwise.
func New(cfg config.EmailConfig, logger *slog.Logger) service.Mailer {
	if !cfg.Endpoint().IsConfigured() {
		return NewLogMailer(logger)
	}
	return NewResendMailer(cfg, logger)
}
