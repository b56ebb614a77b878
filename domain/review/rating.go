// Package review provides star ratings, their routing decision, and the
// private feedback that unhappy customers leave instead of a public review.
package review

import (
	"errors"
	"fmt"
)

// ErrInvalidRating is returned for ratings outside 1-5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is a validated star rating.
type Rating int

// NewRating validates n.
func NewRating(n int) (Rating, error) {
	if n < MinRating || n > MaxRating {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidRating, n)
	}
	return Rating(n), nil
}

// Int returns the rating as an int.
func (r Rating) Int() int { return int(r) }

// Route is the page a customer is sent to after rating.
type Route string

// Route values.
const (
	RouteFeedback  Route = "feedback"
	RouteTemplates Route = "templates"
)

// RouteFor decides where a rating leads: only five stars reach the public
// review templates.
func RouteFor(r Rating) Route {
	if r == MaxRating {
		return RouteTemplates
	}
	return RouteFeedback
}
