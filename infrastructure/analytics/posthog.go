// Package analytics forwards product events to a PostHog-compatible capture
// endpoint.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/internal/config"
)

type captureRequest struct {
	APIKey     string         `json:"api_key"`
	Event      string         `json:"event"`
	DistinctID string         `json:"distinct_id"`
	Properties map[string]any `json:"properties,omitempty"`
	Timestamp  string         `json:"timestamp"`
}

// PostHog sends events to the /capture/ endpoint.
type PostHog struct {
	http   *resty.Client
	apiKey string
	now    func() time.Time
}

// NewPostHog creates a client for ep.
func NewPostHog(ep config.Endpoint) *PostHog {
	client := resty.New().
		SetBaseURL(ep.BaseURL()).
		SetTimeout(ep.Timeout()).
		SetRetryCount(ep.MaxRetries()).
		SetHeader("Content-Type", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
	return &PostHog{http: client, apiKey: ep.APIKey(), now: time.Now}
}

// Capture records e.
func (p *PostHog) Capture(ctx context.Context, e service.AnalyticsEvent) error {
	if e.Name == "" {
		return fmt.Errorf("capture: event name is required")
	}
	distinct := e.DistinctID
	if distinct == "" {
		distinct = "anonymous"
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetBody(captureRequest{
			APIKey:     p.apiKey,
			Event:      e.Name,
			DistinctID: distinct,
			Properties: e.Properties,
			Timestamp:  p.now().UTC().Format(time.RFC3339),
		}).
		Post("/capture/")
	if err != nil {
		return fmt.Errorf("capture %s: %w", e.Name, err)
	}
	if resp.IsError() {
		return fmt.Errorf("capture %s: status %d", e.Name, resp.StatusCode())
	}
	return nil
}

// Noop logs events at debug level and drops them.
type Noop struct {
	logger *slog.Logger
}

// NewNoop creates a Noop.
func NewNoop(logger *slog.Logger) Noop {
	return Noop{logger: logger}
}

// Capture logs e.
func (n Noop) Capture(ctx context.Context, e service.AnalyticsEvent) error {
	n.logger.DebugContext(ctx, "analytics disabled, dropping event", slog.String("event", e.Name))
	return nil
}

// New returns a PostHog client when ep has an API key and a Noop otherwise.
func New(ep config.Endpoint, logger *slog.Logger) service.Analytics {
	if !ep.IsConfigured() {
		return NewNoop(logger)
	}
	return NewPostHog(ep)
}
