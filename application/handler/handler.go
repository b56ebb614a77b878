// Package handler provides the task handlers the queue worker runs: the
// transactional emails and product analytics captures.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/application/service"
	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/review"
	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/infrastructure/email"
)

// Stores groups the read access email handlers need.
type Stores struct {
	Users      account.UserStore
	Businesses business.BusinessStore
	Feedback   review.FeedbackStore
	Leads      lead.LeadStore
	Signups    lead.SignupStore
}

// Dependencies is everything Register needs.
type Dependencies struct {
	Stores    Stores
	Renderer  *email.Renderer
	Mailer    domainservice.Mailer
	Analytics domainservice.Analytics
	// PublicURL prefixes links in emails.
	PublicURL string
	// NotifyEmail receives lead notifications; empty disables them.
	NotifyEmail   string
	ResetTokenTTL time.Duration
	Logger        *slog.Logger
}

// Register installs a handler for every notification operation.
func Register(registry *service.Registry, deps Dependencies) {
	sender := newSender(deps.Renderer, deps.Mailer, deps.Logger)
	links := newLinks(deps.PublicURL)

	registry.Register(task.OperationWelcomeEmail, NewWelcome(deps.Stores, sender, links, deps.Logger))
	registry.Register(task.OperationFeedbackAlertEmail, NewFeedbackAlert(deps.Stores, sender, links, deps.Logger))
	registry.Register(task.OperationPaymentConfirmation, NewPaymentConfirmation(deps.Stores, sender, links, deps.Logger))
	registry.Register(task.OperationPasswordResetEmail, NewPasswordReset(sender, deps.ResetTokenTTL))
	registry.Register(task.OperationEarlyAccessConfirmed, NewEarlyAccess(deps.Stores, sender, deps.Logger))
	registry.Register(task.OperationLeadNotificationEmail, NewLeadNotification(deps.Stores, sender, deps.NotifyEmail, deps.Logger))
	registry.Register(task.OperationCaptureAnalyticsEvent, NewCapture(deps.Analytics))
}

// sender renders a template and hands the result to the mailer.
type sender struct {
	renderer *email.Renderer
	mailer   domainservice.Mailer
	logger   *slog.Logger
}

func newSender(renderer *email.Renderer, mailer domainservice.Mailer, logger *slog.Logger) sender {
	return sender{renderer: renderer, mailer: mailer, logger: logger}
}

func (s sender) send(ctx context.Context, to string, name email.Template, data any) error {
	msg, err := s.renderer.Render(name, data)
	if err != nil {
		return err
	}
	e, err := domainservice.NewEmail([]string{to}, msg.Subject, msg.HTML, msg.Text)
	if err != nil {
		return err
	}
	id, err := s.mailer.Send(ctx, e.WithTag(string(name)))
	if err != nil {
		return fmt.Errorf("send %s email: %w", name, err)
	}
	s.logger.InfoContext(ctx, "email sent",
		slog.String("template", string(name)),
		slog.String("message_id", id),
	)
	return nil
}

type links struct {
	base string
}

func newLinks(publicURL string) links {
	return links{base: strings.TrimRight(publicURL, "/")}
}

func (l links) review(slug string) string { return l.base + "/r/" + slug }

func (l links) dashboard() string { return l.base + "/dashboard" }

func (l links) feedback() string { return l.base + "/dashboard/feedback" }

// gone reports whether err means the entity a task refers to was deleted
// after the task was queued. Such tasks are dropped rather than failed.
func gone(ctx context.Context, logger *slog.Logger, err error, what string, id int64) bool {
	if !errors.Is(err, domain.ErrNotFound) {
		return false
	}
	logger.WarnContext(ctx, "skipping notification, entity no longer exists",
		slog.String("entity", what),
		slog.Int64("id", id),
	)
	return true
}

// formatCents renders an amount in US dollars.
func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// humanDuration renders d in the largest whole unit.
func humanDuration(d time.Duration) string {
	plural := func(n int64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return plural(int64(d/(24*time.Hour)), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int64(d/time.Hour), "hour")
	default:
		return plural(int64(d.Round(time.Minute)/time.Minute), "minute")
	}
}
