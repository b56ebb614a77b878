// Package billing describes hosted checkout sessions and the payment provider
// events that settle them.
package billing

import (
	"errors"
	"time"

	"github.com/reviewfunnel/funnel/domain/repository"
)

// ErrInvalidSignature is returned when a webhook signature does not verify.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutKind distinguishes what a checkout pays for. It travels in the
// session metadata under MetadataKind.
type CheckoutKind string

// CheckoutKind values.
const (
	KindSubscription CheckoutKind = "subscription"
	KindEarlyAccess  CheckoutKind = "early_access"
)

// Metadata keys set on checkout sessions.
const (
	MetadataKind       = "kind"
	MetadataBusinessID = "business_id"
	MetadataSignupID   = "signup_id"
)

// Event types handled by the webhook.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutRequest asks the provider for a hosted checkout page.
type CheckoutRequest struct {
	Kind          CheckoutKind
	CustomerEmail string
	PriceID       string
	// AmountCents is used when PriceID is empty.
	AmountCents int64
	ProductName string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSession is the provider's answer to a CheckoutRequest.
type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook notification.
type Event struct {
	ID   string
	Type string
	// Object fields of interest, flattened from the event payload.
	ObjectID    string
	CustomerID  string
	AmountTotal int64
	Metadata    map[string]string
	Created     time.Time
}

// Kind returns the checkout kind from the metadata.
func (e Event) Kind() CheckoutKind {
	return CheckoutKind(e.Metadata[MetadataKind])
}

// ProcessedEvent records that a provider event was applied.
type ProcessedEvent struct {
	id          int64
	eventID     string
	eventType   string
	processedAt time.Time
}

// NewProcessedEvent creates an unsaved record for e.
func NewProcessedEvent(e Event) ProcessedEvent {
	return ProcessedEvent{eventID: e.ID, eventType: e.Type, processedAt: time.Now().UTC()}
}

// ReconstructProcessedEvent rebuilds a record from storage.
func ReconstructProcessedEvent(id int64, eventID, eventType string, processedAt time.Time) ProcessedEvent {
	return ProcessedEvent{id: id, eventID: eventID, eventType: eventType, processedAt: processedAt}
}

// ID returns the row ID.
func (p ProcessedEvent) ID() int64 { return p.id }

// EventID returns the provider event ID.
func (p ProcessedEvent) EventID() string { return p.eventID }

// EventType returns the provider event type.
func (p ProcessedEvent) EventType() string { return p.eventType }

// ProcessedAt returns when the event was applied.
func (p ProcessedEvent) ProcessedAt() time.Time { return p.processedAt }

// EventStore persists processed events. Saving an already recorded event ID
// fails with an error matching domain.ErrConflict.
type EventStore interface {
	repository.Store[ProcessedEvent]
}

// WithEventID filters by the "event_id" column.
func WithEventID(id string) repository.Option {
	return repository.WithCondition("event_id", id)
}
