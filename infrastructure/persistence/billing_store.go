package persistence

import (
	"github.com/reviewfunnel/funnel/domain/billing"
	"github.com/reviewfunnel/funnel/internal/database"
)

// EventStore implements billing.EventStore using GORM.
type EventStore struct {
	entityStore[billing.ProcessedEvent, PaymentEventModel]
}

// NewEventStore creates a new EventStore.
func NewEventStore(db database.Database) EventStore {
	return EventStore{entityStore: newEntityStore[billing.ProcessedEvent, PaymentEventModel](db, EventMapper{}, "payment event")}
}
