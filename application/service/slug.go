package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/business"
)

// insertWithSlug saves a new business under the first free slug derived
// from its name. Reserved and taken candidates are skipped; an insert that
// loses a race to a concurrent signup hits the unique index and moves on to
// the next candidate.
func insertWithSlug(ctx context.Context, store business.BusinessStore, b business.Business) (business.Business, error) {
	base := business.Slugify(b.Name())
	for n := 0; n < business.MaxSlugAttempts; n++ {
		candidate := business.Candidate(base, n)
		if business.IsReserved(candidate) {
			continue
		}

		taken, err := store.Exists(ctx, business.WithSlug(candidate))
		if err != nil {
			return business.Business{}, fmt.Errorf("check slug %s: %w", candidate, err)
		}
		if taken {
			continue
		}

		saved, err := store.Save(ctx, b.WithSlug(candidate))
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return business.Business{}, fmt.Errorf("save business: %w", err)
		}
	}
	return business.Business{}, fmt.Errorf("%w: %s", business.ErrSlugExhausted, base)
}

// checkSlugFree validates an explicitly chosen slug and reports
// domain.ErrConflict when another business holds it.
func checkSlugFree(ctx context.Context, store business.BusinessStore, slug string) error {
	if err := business.ValidateSlug(slug); err != nil {
		return err
	}
	taken, err := store.Exists(ctx, business.WithSlug(slug))
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: slug %q is already in use", domain.ErrConflict, slug)
	}
	return nil
}

// seedTemplates stores the default review templates for a new business.
func seedTemplates(ctx context.Context, store business.TemplateStore, b business.Business) error {
	defaults, err := business.DefaultTemplates(b.ID(), b.Name())
	if err != nil {
		return err
	}
	for _, t := range defaults {
		if _, err := store.Upsert(ctx, t); err != nil {
			return fmt.Errorf("save %s template: %w", t.Platform(), err)
		}
	}
	return nil
}
