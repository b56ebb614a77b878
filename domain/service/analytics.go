package service

import "context"

// AnalyticsEvent is a product analytics capture.
type AnalyticsEvent struct {
	Name       string
	DistinctID string
	Properties map[string]any
}

// Analytics records product events.
type Analytics interface {
	Capture(ctx context.Context, e AnalyticsEvent) error
}
