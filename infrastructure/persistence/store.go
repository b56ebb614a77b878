package persistence

import (
	"context"
	"fmt"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/internal/database"
)

type identified interface {
	ID() int64
}

// entityStore adds Save and Delete to the generic repository. Entities with
// a zero ID are inserted; everything else is written in full.
type entityStore[D identified, E any] struct {
	database.Repository[D, E]
}

func newEntityStore[D identified, E any](db database.Database, mapper database.EntityMapper[D, E], label string) entityStore[D, E] {
	return entityStore[D, E]{Repository: database.NewRepository(db, mapper, label)}
}

// Save creates or updates entity. Unique constraint violations are reported
// as domain.ErrConflict.
func (s entityStore[D, E]) Save(ctx context.Context, entity D) (D, error) {
	var (
		saved D
		err   error
	)
	if entity.ID() == 0 {
		saved, err = s.Create(ctx, entity)
	} else {
		saved, err = s.Update(ctx, entity)
	}
	if err != nil {
		if database.IsDuplicateKey(err) {
			return saved, fmt.Errorf("%w: %w", domain.ErrConflict, err)
		}
		return saved, err
	}
	return saved, nil
}

// Delete removes entity.
func (s entityStore[D, E]) Delete(ctx context.Context, entity D) error {
	return s.Remove(ctx, entity)
}
