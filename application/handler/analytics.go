package handler

import (
	"context"

	domainservice "github.com/reviewfunnel/funnel/domain/service"
	"github.com/reviewfunnel/funnel/domain/task"
)

// Capture forwards a queued product event.
type Capture struct {
	analytics domainservice.Analytics
}

// NewCapture creates a Capture handler.
func NewCapture(analytics domainservice.Analytics) *Capture {
	return &Capture{analytics: analytics}
}

// Execute sends the event.
func (h *Capture) Execute(ctx context.Context, payload map[string]any) error {
	name, err := task.PayloadString(payload, task.KeyEvent)
	if err != nil {
		return err
	}
	return h.analytics.Capture(ctx, domainservice.AnalyticsEvent{
		Name:       name,
		DistinctID: task.PayloadOptionalString(payload, task.KeyDistinctID),
		Properties: task.PayloadMap(payload, task.KeyProperties),
	})
}
