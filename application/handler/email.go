package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/repository"
	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/infrastructure/email"
)

// Welcome sends the post-signup email with the owner's review link.
type Welcome struct {
	stores Stores
	sender sender
	links  links
	logger *slog.Logger
}

// NewWelcome creates a Welcome handler.
func NewWelcome(stores Stores, sender sender, links links, logger *slog.Logger) *Welcome {
	return &Welcome{stores: stores, sender: sender, links: links, logger: logger}
}

// Execute sends the welcome email.
func (h *Welcome) Execute(ctx context.Context, payload map[string]any) error {
	userID, err := task.PayloadInt64(payload, task.KeyUserID)
	if err != nil {
		return err
	}
	businessID, err := task.PayloadInt64(payload, task.KeyBusinessID)
	if err != nil {
		return err
	}

	user, err := h.stores.Users.FindOne(ctx, repository.WithID(userID))
	if err != nil {
		if gone(ctx, h.logger, err, "user", userID) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}
	b, err := h.stores.Businesses.FindOne(ctx, repository.WithID(businessID))
	if err != nil {
		if gone(ctx, h.logger, err, "business", businessID) {
			return nil
		}
		return fmt.Errorf("get business: %w", err)
	}

	return h.sender.send(ctx, user.Email(), email.TemplateWelcome, email.WelcomeData{
		BusinessName: b.Name(),
		ReviewURL:    h.links.review(b.Slug()),
		DashboardURL: h.links.dashboard(),
	})
}

// FeedbackAlert tells an owner about new private feedback.
type FeedbackAlert struct {
	stores Stores
	sender sender
	links  links
	logger *slog.Logger
}

// NewFeedbackAlert creates a FeedbackAlert handler.
func NewFeedbackAlert(stores Stores, sender sender, links links, logger *slog.Logger) *FeedbackAlert {
	return &FeedbackAlert{stores: stores, sender: sender, links: links, logger: logger}
}

// Execute sends the alert unless the owner has turned alerts off since the
// feedback arrived.
func (h *FeedbackAlert) Execute(ctx context.Context, payload map[string]any) error {
	feedbackID, err := task.PayloadInt64(payload, task.KeyFeedbackID)
	if err != nil {
		return err
	}

	fb, err := h.stores.Feedback.FindOne(ctx, repository.WithID(feedbackID))
	if err != nil {
		if gone(ctx, h.logger, err, "feedback", feedbackID) {
			return nil
		}
		return fmt.Errorf("get feedback: %w", err)
	}
	b, owner, err := ownerOf(ctx, h.stores, fb.BusinessID())
	if err != nil {
		if gone(ctx, h.logger, err, "business", fb.BusinessID()) {
			return nil
		}
		return err
	}
	if !b.NotifyOnFeedback() {
		return nil
	}

	contact := fb.Contact()
	return h.sender.send(ctx, owner, email.TemplateFeedbackAlert, email.FeedbackAlertData{
		BusinessName: b.Name(),
		Rating:       fb.Rating().Int(),
		Message:      fb.Message(),
		ContactName:  contact.Name(),
		ContactEmail: contact.Email(),
		ContactPhone: contact.Phone(),
		DashboardURL: h.links.feedback(),
	})
}

// PaymentConfirmation sends the subscription receipt.
type PaymentConfirmation struct {
	stores Stores
	sender sender
	links  links
	logger *slog.Logger
}

// NewPaymentConfirmation creates a PaymentConfirmation handler.
func NewPaymentConfirmation(stores Stores, sender sender, links links, logger *slog.Logger) *PaymentConfirmation {
	return &PaymentConfirmation{stores: stores, sender: sender, links: links, logger: logger}
}

// Execute sends the receipt to the business owner.
func (h *PaymentConfirmation) Execute(ctx context.Context, payload map[string]any) error {
	businessID, err := task.PayloadInt64(payload, task.KeyBusinessID)
	if err != nil {
		return err
	}
	b, owner, err := ownerOf(ctx, h.stores, businessID)
	if err != nil {
		if gone(ctx, h.logger, err, "business", businessID) {
			return nil
		}
		return err
	}
	return h.sender.send(ctx, owner, email.TemplatePaymentConfirmation, email.PaymentConfirmationData{
		BusinessName: b.Name(),
		DashboardURL: h.links.dashboard(),
	})
}

// PasswordReset sends a reset link. The payload carries everything needed,
// since the raw token is never stored.
type PasswordReset struct {
	sender sender
	ttl    string
}

// NewPasswordReset creates a PasswordReset handler.
func NewPasswordReset(sender sender, ttl time.Duration) *PasswordReset {
	return &PasswordReset{sender: sender, ttl: humanDuration(ttl)}
}

// Execute sends the reset email.
func (h *PasswordReset) Execute(ctx context.Context, payload map[string]any) error {
	to, err := task.PayloadString(payload, task.KeyEmail)
	if err != nil {
		return err
	}
	resetURL, err := task.PayloadString(payload, task.KeyResetURL)
	if err != nil {
		return err
	}
	return h.sender.send(ctx, to, email.TemplatePasswordReset, email.PasswordResetData{
		ResetURL:  resetURL,
		ExpiresIn: h.ttl,
	})
}

// EarlyAccess confirms a paid early access signup.
type EarlyAccess struct {
	stores Stores
	sender sender
	logger *slog.Logger
}

// NewEarlyAccess creates an EarlyAccess handler.
func NewEarlyAccess(stores Stores, sender sender, logger *slog.Logger) *EarlyAccess {
	return &EarlyAccess{stores: stores, sender: sender, logger: logger}
}

// Execute sends the confirmation.
func (h *EarlyAccess) Execute(ctx context.Context, payload map[string]any) error {
	signupID, err := task.PayloadInt64(payload, task.KeySignupID)
	if err != nil {
		return err
	}
	signup, err := h.stores.Signups.FindOne(ctx, repository.WithID(signupID))
	if err != nil {
		if gone(ctx, h.logger, err, "early_access_signup", signupID) {
			return nil
		}
		return fmt.Errorf("get signup: %w", err)
	}
	return h.sender.send(ctx, signup.Email(), email.TemplateEarlyAccess, email.EarlyAccessData{
		Name:   signup.Name(),
		Amount: formatCents(signup.AmountCents()),
	})
}

// LeadNotification tells the operator about a new lead.
type LeadNotification struct {
	stores Stores
	sender sender
	to     string
	logger *slog.Logger
}

// NewLeadNotification creates a LeadNotification handler. An empty to
// disables the notice.
func NewLeadNotification(stores Stores, sender sender, to string, logger *slog.Logger) *LeadNotification {
	return &LeadNotification{stores: stores, sender: sender, to: to, logger: logger}
}

// Execute sends the notice.
func (h *LeadNotification) Execute(ctx context.Context, payload map[string]any) error {
	if h.to == "" {
		h.logger.DebugContext(ctx, "lead notification skipped, no notify address")
		return nil
	}
	leadID, err := task.PayloadInt64(payload, task.KeyLeadID)
	if err != nil {
		return err
	}
	l, err := h.stores.Leads.FindOne(ctx, repository.WithID(leadID))
	if err != nil {
		if gone(ctx, h.logger, err, "lead", leadID) {
			return nil
		}
		return fmt.Errorf("get lead: %w", err)
	}
	d := l.Details()
	return h.sender.send(ctx, h.to, email.TemplateLeadNotification, email.LeadNotificationData{
		Email:        l.Email(),
		Name:         d.Name,
		BusinessName: d.BusinessName,
		Phone:        d.Phone,
		Source:       d.Source,
		Message:      d.Message,
	})
}

func ownerOf(ctx context.Context, stores Stores, businessID int64) (business.Business, string, error) {
	b, err := stores.Businesses.FindOne(ctx, repository.WithID(businessID))
	if err != nil {
		return business.Business{}, "", fmt.Errorf("get business: %w", err)
	}
	owner, err := stores.Users.FindOne(ctx, repository.WithID(b.OwnerID()))
	if err != nil {
		return business.Business{}, "", fmt.Errorf("get owner: %w", err)
	}
	return b, owner.Email(), nil
}
