package review

import (
	"context"

	"github.com/reviewfunnel/funnel/domain/repository"
)

// ReviewStore persists ratings.
type ReviewStore interface {
	repository.Store[Review]

	// CountByRating returns the number of reviews per star for a business.
	CountByRating(ctx context.Context, businessID int64) (map[int]int64, error)
}

// FeedbackStore persists feedback.
type FeedbackStore interface {
	repository.Store[Feedback]
}

// WithResolved filters feedback by the "resolved" column.
func WithResolved(resolved bool) repository.Option {
	return repository.WithCondition("resolved", resolved)
}

// WithRating filters by the "rating" column.
func WithRating(r Rating) repository.Option {
	return repository.WithCondition("rating", int(r))
}
