package review

// Summary aggregates a business's ratings and feedback for the dashboard.
type Summary struct {
	totalReviews       int64
	averageRating      float64
	distribution       map[int]int64
	totalFeedback      int64
	unresolvedFeedback int64
}

// NewSummary builds a Summary from a per-star count and feedback totals.
func NewSummary(distribution map[int]int64, totalFeedback, unresolvedFeedback int64) Summary {
	dist := make(map[int]int64, MaxRating)
	var total, weighted int64
	for star := MinRating; star <= MaxRating; star++ {
		n := distribution[star]
		dist[star] = n
		total += n
		weighted += n * int64(star)
	}
	avg := 0.0
	if total > 0 {
		avg = float64(weighted) / float64(total)
	}
	return Summary{
		totalReviews:       total,
		averageRating:      avg,
		distribution:       dist,
		totalFeedback:      totalFeedback,
		unresolvedFeedback: unresolvedFeedback,
	}
}

// TotalReviews returns the number of ratings.
func (s Summary) TotalReviews() int64 { return s.totalReviews }

// AverageRating returns the mean star rating, or 0 with no ratings.
func (s Summary) AverageRating() float64 { return s.averageRating }

// Distribution returns a copy of the count per star, 1 through 5.
func (s Summary) Distribution() map[int]int64 {
	result := make(map[int]int64, len(s.distribution))
	for k, v := range s.distribution {
		result[k] = v
	}
	return result
}

// FiveStarShare returns the fraction of ratings that were five stars.
func (s Summary) FiveStarShare() float64 {
	if s.totalReviews == 0 {
		return 0
	}
	return float64(s.distribution[MaxRating]) / float64(s.totalReviews)
}

// TotalFeedback returns the number of feedback messages.
func (s Summary) TotalFeedback() int64 { return s.totalFeedback }

// UnresolvedFeedback returns the number of open feedback messages.
func (s Summary) UnresolvedFeedback() int64 { return s.unresolvedFeedback }
