// Package email renders and delivers transactional email.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
)

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Tags    []tag    `json:"tags,omitempty"`
}

type tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// ResendMailer sends email through the Resend HTTP API.
type ResendMailer struct {
	http   *resty.Client
	from   string
	logger *slog.Logger
}

// NewResendMailer creates a mailer from cfg.
func NewResendMailer(cfg config.EmailConfig, logger *slog.Logger) *ResendMailer {
	ep := cfg.Endpoint()
	client := resty.New().
		SetBaseURL(ep.BaseURL()).
		SetTimeout(ep.Timeout()).
		SetRetryCount(ep.MaxRetries()).
		SetAuthToken(ep.APIKey()).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(retryOnServerError)

	return &ResendMailer{http: client, from: cfg.From(), logger: logger}
}

// Send delivers e and returns the provider message ID.
func (m *ResendMailer) Send(ctx context.Context, e service.Email) (string, error) {
	req := sendRequest{
		From:    m.from,
		To:      e.To(),
		Subject: e.Subject(),
		HTML:    e.HTML(),
		Text:    e.Text(),
		ReplyTo: e.ReplyTo(),
	}
	if e.Tag() != "" {
		req.Tags = []tag{{Name: "category", Value: e.Tag()}}
	}

	var (
		result  sendResponse
		failure errorResponse
	)
	resp, err := m.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Post("/emails")
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("send email: status %d: %s", resp.StatusCode(), strings.TrimSpace(failure.Name+" "+failure.Message))
	}

	m.logger.DebugContext(ctx, "email sent",
		slog.String("message_id", result.ID),
		slog.String("tag", e.Tag()),
	)
	return result.ID, nil
}

func retryOnServerError(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return r.StatusCode() == 429 || r.StatusCode() >= 500
}
