package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reviewfunnel/funnel/domain"
	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/domain/repository"
)

// maxCodeCollisions bounds retries when a generated code already exists.
const maxCodeCollisions = 5

// InviteGenerateParams asks for a batch of invite codes.
type InviteGenerateParams struct {
	Count     int
	Note      string
	ExpiresAt time.Time
}

// InviteListParams filters the invite code list.
type InviteListParams struct {
	PageParams
	Status lead.InviteStatus
}

// Invites issues and manages invite codes.
type Invites struct {
	store  lead.InviteStore
	logger *slog.Logger
}

// NewInvites creates a new Invites service.
func NewInvites(store lead.InviteStore, logger *slog.Logger) *Invites {
	return &Invites{store: store, logger: logger}
}

// Generate creates Count fresh codes (1 to lead.MaxInviteBatch).
func (s *Invites) Generate(ctx context.Context, params InviteGenerateParams) ([]lead.InviteCode, error) {
	if params.Count < 1 || params.Count > lead.MaxInviteBatch {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", domain.ErrValidation, lead.MaxInviteBatch)
	}

	codes := make([]lead.InviteCode, 0, params.Count)
	for range params.Count {
		saved, err := s.generateOne(ctx, params.Note, params.ExpiresAt)
		if err != nil {
			return codes, err
		}
		codes = append(codes, saved)
	}

	s.logger.InfoContext(ctx, "invite codes generated", slog.Int("count", len(codes)))
	return codes, nil
}

func (s *Invites) generateOne(ctx context.Context, note string, expiresAt time.Time) (lead.InviteCode, error) {
	for range maxCodeCollisions {
		raw, err := lead.GenerateInviteCode()
		if err != nil {
			return lead.InviteCode{}, err
		}
		code, err := lead.NewInviteCode(raw, note, expiresAt)
		if err != nil {
			return lead.InviteCode{}, err
		}
		saved, err := s.store.Save(ctx, code)
		if err == nil {
			return saved, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return lead.InviteCode{}, fmt.Errorf("save invite code: %w", err)
		}
	}
	return lead.InviteCode{}, fmt.Errorf("generate invite code: %d collisions in a row", maxCodeCollisions)
}

// List returns a page of invite codes, newest first.
func (s *Invites) List(ctx context.Context, params InviteListParams) (Page[lead.InviteCode], error) {
	var filters []repository.Option
	if params.Status != "" {
		filters = append(filters, repository.WithStatus(string(params.Status)))
	}
	return listPage(ctx, s.store, params.PageParams, filters...)
}

// Validate reports whether code can be used to sign up now. Unknown codes
// are simply unavailable.
func (s *Invites) Validate(ctx context.Context, code string) (bool, error) {
	if strings.TrimSpace(code) == "" {
		return false, nil
	}
	c, err := s.store.FindOne(ctx, lead.WithCode(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find invite code: %w", err)
	}
	return c.Available(time.Now()), nil
}

// Revoke disables an unused code.
func (s *Invites) Revoke(ctx context.Context, id int64) (lead.InviteCode, error) {
	c, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return lead.InviteCode{}, err
	}
	revoked, err := c.Revoke()
	if err != nil {
		return lead.InviteCode{}, err
	}
	saved, err := s.store.Save(ctx, revoked)
	if err != nil {
		return lead.InviteCode{}, fmt.Errorf("save invite code: %w", err)
	}
	return saved, nil
}

// Delete removes a code.
func (s *Invites) Delete(ctx context.Context, id int64) error {
	c, err := s.store.FindOne(ctx, repository.WithID(id))
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, c)
}
