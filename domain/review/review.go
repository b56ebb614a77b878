package review

import "time"

// Review records one customer rating. Reviews are append-only.
type Review struct {
	id         int64
	businessID int64
	rating     Rating
	createdAt  time.Time
}

// NewReview creates an unsaved review.
func NewReview(businessID int64, rating Rating) Review {
	return Review{
		businessID: businessID,
		rating:     rating,
		createdAt:  time.Now().UTC(),
	}
}

// ReconstructReview rebuilds a Review from storage.
func ReconstructReview(id, businessID int64, rating Rating, createdAt time.Time) Review {
	return Review{id: id, businessID: businessID, rating: rating, createdAt: createdAt}
}

// ID returns the review ID.
func (r Review) ID() int64 { return r.id }

// BusinessID returns the business that was rated.
func (r Review) BusinessID() int64 { return r.businessID }

// Rating returns the star rating.
func (r Review) Rating() Rating { return r.rating }

// Route returns where this rating sent the customer.
func (r Review) Route() Route { return RouteFor(r.rating) }

// CreatedAt returns when the rating was submitted.
func (r Review) CreatedAt() time.Time { return r.createdAt }
