package persistence

import (
	"context"
	"fmt"

	"github.com/reviewfunnel/funnel/domain/review"
	"github.com/reviewfunnel/funnel/internal/database"
)

// ReviewStore implements review.ReviewStore using GORM.
type ReviewStore struct {
	entityStore[review.Review, ReviewModel]
}

// NewReviewStore creates a new ReviewStore.
func NewReviewStore(db database.Database) ReviewStore {
	return ReviewStore{entityStore: newEntityStore[review.Review, ReviewModel](db, ReviewMapper{}, "review")}
}

// CountByRating returns how many reviews a business has at each star level.
// Levels with no reviews are absent from the map.
func (s ReviewStore) CountByRating(ctx context.Context, businessID int64) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Total  int64
	}
	err := s.DB(ctx).Model(&ReviewModel{}).
		Select("rating, COUNT(*) AS total").
		Where("business_id = ?", businessID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count reviews by rating: %w", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Total
	}
	return counts, nil
}

// FeedbackStore implements review.FeedbackStore using GORM.
type FeedbackStore struct {
	entityStore[review.Feedback, FeedbackModel]
}

// NewFeedbackStore creates a new FeedbackStore.
func NewFeedbackStore(db database.Database) FeedbackStore {
	return FeedbackStore{entityStore: newEntityStore[review.Feedback, FeedbackModel](db, FeedbackMapper{}, "feedback")}
}
