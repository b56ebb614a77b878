package service

import (
	"context"
	"fmt"

	"github.com/reviewfunnel/funnel/domain/repository"
)

// Page size bounds for list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageParams selects a slice of a list.
type PageParams struct {
	Limit  int
	Offset int
}

func (p PageParams) normalized() PageParams {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page is one slice of a list plus the size of the whole list.
type Page[T any] struct {
	Items  []T
	Total  int64
	Limit  int
	Offset int
}

// listPage returns one page of store entries matching filters, newest first.
func listPage[T any](ctx context.Context, store repository.Store[T], params PageParams, filters ...repository.Option) (Page[T], error) {
	params = params.normalized()

	total, err := store.Count(ctx, filters...)
	if err != nil {
		return Page[T]{}, fmt.Errorf("count: %w", err)
	}

	options := make([]repository.Option, 0, len(filters)+3)
	options = append(options, filters...)
	options = append(options, repository.WithNewestFirst())
	options = append(options, repository.WithPagination(params.Limit, params.Offset)...)

	items, err := store.Find(ctx, options...)
	if err != nil {
		return Page[T]{}, fmt.Errorf("find: %w", err)
	}
	return Page[T]{Items: items, Total: total, Limit: params.Limit, Offset: params.Offset}, nil
}
