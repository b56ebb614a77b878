package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
	"github.com/reviewfunnel/funnel/domain/task"
)

// LeadListParams filters the operator lead list.
type LeadListParams struct {
	PageParams
	Status lead.Status
}

// Leads captures prospects and lets operators work them.
// Embeds Collection for Find/Get; bespoke methods handle writes.
type Leads struct {
	repository.Collection[lead.Lead]
	store  lead.LeadStore
	queue  *Queue
	logger *slog.Logger
}

// NewLeads creates a new Leads service.
func NewLeads(store lead.LeadStore, queue *Queue, logger *slog.Logger) *Leads {
	return &Leads{
		Collection: repository.NewCollection[lead.Lead](store),
		store:      store,
		queue:      queue,
		logger:     logger,
	}
}

// Capture stores a lead from a public form. A repeat submission from the
// same email updates the existing lead. Operators are notified either way.
func (s *Leads) Capture(ctx context.Context, email string, details lead.Details) (lead.Lead, error) {
	candidate, err := lead.NewLead(email, details)
	if err != nil {
		return lead.Lead{}, err
	}

	existing, err := s.store.FindOne(ctx, repository.WithEmail(candidate.Email()))
	switch {
	case err == nil:
		candidate = existing.Merge(details)
	case errors.Is(err, domain.ErrNotFound):
	default:
		return lead.Lead{}, fmt.Errorf("find lead: %w", err)
	}

	saved, err := s.store.Save(ctx, candidate)
	if err != nil {
		return lead.Lead{}, fmt.Errorf("save lead: %w", err)
	}

	s.logger.InfoContext(ctx, "lead captured",
		slog.Int64("lead_id", saved.ID()),
		slog.String("source", saved.Details().Source),
	)
	s.queue.Notify(ctx,
		task.NewLeadNotification(saved.ID()),
		task.NewAnalyticsCapture("lead_captured", saved.Email(), map[string]any{
			"source": saved.Details().Source,
		}),
	)
	return saved, nil
}

// List returns a page of leads, newest first.
func (s *Leads) List(ctx context.Context, params LeadListParams) (Page[lead.Lead], error) {
	var filters []repository.Option
	if params.Status != "" {
		filters = append(filters, repository.WithStatus(string(params.Status)))
	}
	return listPage(ctx, s.store, params.PageParams, filters...)
}

// UpdateStatus moves a lead through the funnel.
func (s *Leads) UpdateStatus(ctx context.Context, id int64, status lead.Status) (lead.Lead, error) {
	l, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return lead.Lead{}, err
	}
	saved, err := s.store.Save(ctx, l.WithStatus(status))
	if err != nil {
		return lead.Lead{}, fmt.Errorf("save lead: %w", err)
	}
	return saved, nil
}

// MarkConverted moves a lead to converted.
func (s *Leads) MarkConverted(ctx context.Context, id int64) (lead.Lead, error) {
	return s.UpdateStatus(ctx, id, lead.StatusConverted)
}

// Delete removes a lead.
func (s *Leads) Delete(ctx context.Context, id int64) error {
	l, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, l)
}
