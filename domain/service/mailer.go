// Package service declares the contracts for the hosted services the
// application depends on. Implementations live under infrastructure/.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned by a client whose credentials are missing.
var ErrNotConfigured = errors.New("service not configured")

// Email is a rendered transactional email.
type Email struct {
	to      []string
	subject string
	html    string
	text    string
	replyTo string
	tag     string
}

// NewEmail creates an Email. At least one recipient and a subject are required.
func NewEmail(to []string, subject, html, text string) (Email, error) {
	recipients := make([]string, 0, len(to))
	for _, r := range to {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return Email{}, fmt.Errorf("email %q: no recipients", subject)
	}
	if strings.TrimSpace(subject) == "" {
		return Email{}, errors.New("email: subject is required")
	}
	return Email{to: recipients, subject: subject, html: html, text: text}, nil
}

// To returns a copy of the recipients.
func (e Email) To() []string {
	result := make([]string, len(e.to))
	copy(result, e.to)
	return result
}

// Subject returns the subject line.
func (e Email) Subject() string { return e.subject }

// HTML returns the HTML body.
func (e Email) HTML() string { return e.html }

// Text returns the plain text body.
func (e Email) Text() string { return e.text }

// ReplyTo returns the reply-to address, or "".
func (e Email) ReplyTo() string { return e.replyTo }

// Tag returns the provider tag used to group sends, or "".
func (e Email) Tag() string { return e.tag }

// WithReplyTo returns a copy with a reply-to address.
func (e Email) WithReplyTo(addr string) Email {
	e.replyTo = addr
	return e
}

// WithTag returns a copy tagged for provider analytics.
func (e Email) WithTag(tag string) Email {
	e.tag = tag
	return e
}

// Mailer delivers email.
type Mailer interface {
	// Send delivers e and returns the provider message ID.
	Send(ctx context.Context, e Email) (string, error)
}
