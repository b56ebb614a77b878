package business

import (
	"context"

	"github.com/reviewfunnel/funnel/domain/repository"
)

// BusinessStore persists businesses. Save reports a slug collision with an
// error matching domain.ErrConflict.
type BusinessStore interface {
	repository.Store[Business]
}

// TemplateStore persists review templates.
type TemplateStore interface {
	repository.Store[ReviewTemplate]

	// Upsert inserts or replaces the template for (business, platform).
	Upsert(ctx context.Context, template ReviewTemplate) (ReviewTemplate, error)
}
