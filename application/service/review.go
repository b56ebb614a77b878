package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/domain/repository"
	"github.com/reviewfunnel/funnel/domain/review"
	"github.com/reviewfunnel/funnel/domain/task"
)

// RatingResult tells the review page where to send the customer next.
type RatingResult struct {
	Review   review.Review
	Route    review.Route
	Business business.Business
	// Templates is set only for review.RouteTemplates.
	Templates []business.ReviewTemplate
}

// FeedbackParams is a private feedback submission.
type FeedbackParams struct {
	// Rating is the star rating that led to the form; 0 when unknown.
	Rating  int
	Message string
	Name    string
	Email   string
	Phone   string
}

// FeedbackListParams filters an owner's feedback list.
type FeedbackListParams struct {
	PageParams
	Resolved *bool
}

// Reviews runs the public review funnel and the owner's view of its results.
type Reviews struct {
	businesses business.BusinessStore
	templates  business.TemplateStore
	reviews    review.ReviewStore
	feedback   review.FeedbackStore
	queue      *Queue
	logger     *slog.Logger
}

// NewReviews creates a new Reviews service.
func NewReviews(
	businesses business.BusinessStore,
	templates business.TemplateStore,
	reviews review.ReviewStore,
	feedback review.FeedbackStore,
	queue *Queue,
	logger *slog.Logger,
) *Reviews {
	return &Reviews{
		businesses: businesses,
		templates:  templates,
		reviews:    reviews,
		feedback:   feedback,
		queue:      queue,
		logger:     logger,
	}
}

// Rate records a star rating for the business behind slug and returns the
// customer's next step. Ratings outside 1-5 are rejected before the business
// is looked up.
func (s *Reviews) Rate(ctx context.Context, slug string, stars int) (RatingResult, error) {
	rating, err := review.NewRating(stars)
	if err != nil {
		return RatingResult{}, err
	}

	b, err := s.businesses.FindOne(ctx, business.WithSlug(slug))
	if err != nil {
		return RatingResult{}, err
	}

	saved, err := s.reviews.Save(ctx, review.NewReview(b.ID(), rating))
	if err != nil {
		return RatingResult{}, fmt.Errorf("save review: %w", err)
	}

	result := RatingResult{Review: saved, Route: saved.Route(), Business: b}
	if result.Route == review.RouteTemplates {
		result.Templates, err = s.Templates(ctx, b.ID())
		if err != nil {
			return RatingResult{}, err
		}
	}

	s.logger.DebugContext(ctx, "rating recorded",
		slog.Int64("business_id", b.ID()),
		slog.Int("rating", rating.Int()),
		slog.String("route", string(result.Route)),
	)
	return result, nil
}

// SubmitFeedback stores private feedback and, when the owner wants it,
// queues an alert email.
func (s *Reviews) SubmitFeedback(ctx context.Context, slug string, params FeedbackParams) (review.Feedback, error) {
	var rating review.Rating
	if params.Rating != 0 {
		r, err := review.NewRating(params.Rating)
		if err != nil {
			return review.Feedback{}, err
		}
		rating = r
	}
	contact, err := review.NewContact(params.Name, params.Email, params.Phone)
	if err != nil {
		return review.Feedback{}, err
	}

	b, err := s.businesses.FindOne(ctx, business.WithSlug(slug))
	if err != nil {
		return review.Feedback{}, err
	}

	f, err := review.NewFeedback(b.ID(), rating, params.Message, contact)
	if err != nil {
		return review.Feedback{}, err
	}
	saved, err := s.feedback.Save(ctx, f)
	if err != nil {
		return review.Feedback{}, fmt.Errorf("save feedback: %w", err)
	}

	s.logger.InfoContext(ctx, "feedback received",
		slog.Int64("business_id", b.ID()),
		slog.Int64("feedback_id", saved.ID()),
	)
	if b.NotifyOnFeedback() {
		s.queue.Notify(ctx, task.NewFeedbackAlert(saved.ID()))
	}
	return saved, nil
}

// Templates returns a business's review templates in platform order.
func (s *Reviews) Templates(ctx context.Context, businessID int64) ([]business.ReviewTemplate, error) {
	templates, err := s.templates.Find(ctx, repository.WithBusinessID(businessID), repository.WithOrderAsc("id"))
	if err != nil {
		return nil, fmt.Errorf("find templates: %w", err)
	}
	return templates, nil
}

// SaveTemplate creates or replaces the template for one platform.
func (s *Reviews) SaveTemplate(ctx context.Context, businessID int64, platform, body string) (business.ReviewTemplate, error) {
	p, err := business.ParsePlatform(platform)
	if err != nil {
		return business.ReviewTemplate{}, err
	}
	t, err := business.NewReviewTemplate(businessID, p, body)
	if err != nil {
		return business.ReviewTemplate{}, err
	}
	return s.templates.Upsert(ctx, t)
}

// ResetTemplates restores the default templates, keeping templates for
// platforms that have no default.
func (s *Reviews) ResetTemplates(ctx context.Context, businessID int64) ([]business.ReviewTemplate, error) {
	b, err := s.businesses.FindOne(ctx, repository.WithID(businessID))
	if err != nil {
		return nil, err
	}
	if err := seedTemplates(ctx, s.templates, b); err != nil {
		return nil, err
	}
	return s.Templates(ctx, businessID)
}

// ListReviews returns a page of a business's ratings, newest first.
func (s *Reviews) ListReviews(ctx context.Context, businessID int64, params PageParams) (Page[review.Review], error) {
	return listPage(ctx, s.reviews, params, repository.WithBusinessID(businessID))
}

// ListFeedback returns a page of a business's feedback, newest first.
func (s *Reviews) ListFeedback(ctx context.Context, businessID int64, params FeedbackListParams) (Page[review.Feedback], error) {
	filters := []repository.Option{repository.WithBusinessID(businessID)}
	if params.Resolved != nil {
		filters = append(filters, review.WithResolved(*params.Resolved))
	}
	return listPage(ctx, s.feedback, params.PageParams, filters...)
}

// ResolveFeedback marks one piece of a business's feedback resolved or open
// again. Feedback belonging to another business is reported as not found.
func (s *Reviews) ResolveFeedback(ctx context.Context, businessID, feedbackID int64, resolved bool) (review.Feedback, error) {
	f, err := s.feedback.FindOne(ctx, repository.WithID(feedbackID), repository.WithBusinessID(businessID))
	if err != nil {
		return review.Feedback{}, err
	}
	if f.Resolved() == resolved {
		return f, nil
	}
	saved, err := s.feedback.Save(ctx, f.Resolve(resolved))
	if err != nil {
		return review.Feedback{}, fmt.Errorf("save feedback: %w", err)
	}
	return saved, nil
}

// Summary computes the dashboard numbers for a business.
func (s *Reviews) Summary(ctx context.Context, businessID int64) (review.Summary, error) {
	var (
		distribution map[int]int64
		total        int64
		unresolved   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		distribution, err = s.reviews.CountByRating(gctx, businessID)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.feedback.Count(gctx, repository.WithBusinessID(businessID))
		return err
	})
	g.Go(func() error {
		var err error
		unresolved, err = s.feedback.Count(gctx, repository.WithBusinessID(businessID), review.WithResolved(false))
		return err
	})
	if err := g.Wait(); err != nil {
		return review.Summary{}, fmt.Errorf("dashboard summary: %w", err)
	}

	return review.NewSummary(distribution, total, unresolved), nil
}
