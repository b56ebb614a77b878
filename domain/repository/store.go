package repository

import "context"

// Store is the persistence contract implemented by every entity store.
type Store[T any] interface {
	Find(ctx context.Context, options ...Option) ([]T, error)
	FindOne(ctx context.Context, options ...Option) (T, error)
	Count(ctx context.Context, options ...Option) (int64, error)
	Exists(ctx context.Context, options ...Option) (bool, error)
	Save(ctx context.Context, entity T) (T, error)
	Delete(ctx context.Context, entity T) error
	DeleteBy(ctx context.Context, options ...Option) error
}

// Collection is a read-only view of a Store, exposing only Find and Get.
type Collection[T any] struct {
	store Store[T]
}

// NewCollection wraps a Store in a read-only Collection.
func NewCollection[T any](store Store[T]) Collection[T] {
	return Collection[T]{store: store}
}

// Find returns all entities matching the given options.
func (c Collection[T]) Find(ctx context.Context, options ...Option) ([]T, error) {
	return c.store.Find(ctx, options...)
}

// Get returns a single entity matching the given options.
func (c Collection[T]) Get(ctx context.Context, options ...Option) (T, error) {
	return c.store.FindOne(ctx, options...)
}

// Count returns the number of entities matching the given options.
func (c Collection[T]) Count(ctx context.Context, options ...Option) (int64, error) {
	return c.store.Count(ctx, options...)
}

// Transactor runs fn inside a single database transaction. Stores called
// with the context passed to fn participate in that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
