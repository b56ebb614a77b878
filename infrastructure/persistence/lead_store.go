package persistence

import (
	"context"
	"fmt"

	"github.com/reviewfunnel/funnel/domain/lead"
	"github.com/reviewfunnel/funnel/internal/database"
)

// LeadStore implements lead.LeadStore using GORM.
type LeadStore struct {
	entityStore[lead.Lead, LeadModel]
}

// NewLeadStore creates a new LeadStore.
func NewLeadStore(db database.Database) LeadStore {
	return LeadStore{entityStore: newEntityStore[lead.Lead, LeadModel](db, LeadMapper{}, "lead")}
}

// InviteStore implements lead.InviteStore using GORM.
type InviteStore struct {
	entityStore[lead.InviteCode, InviteCodeModel]
}

// NewInviteStore creates a new InviteStore.
func NewInviteStore(db database.Database) InviteStore {
	return InviteStore{entityStore: newEntityStore[lead.InviteCode, InviteCodeModel](db, InviteMapper{}, "invite code")}
}

// Redeem writes the redeemed state of c only if the row is still unused, so
// two signups racing for one code cannot both succeed.
func (s InviteStore) Redeem(ctx context.Context, c lead.InviteCode) error {
	model := s.Mapper().ToModel(c)
	result := s.DB(ctx).Model(&InviteCodeModel{}).
		Where("id = ? AND status = ?", model.ID, string(lead.InviteUnused)).
		Updates(map[string]any{
			"status":  model.Status,
			"used_by": model.UsedBy,
			"used_at": model.UsedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("redeem invite code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return lead.ErrInviteUnavailable
	}
	return nil
}

// SignupStore implements lead.SignupStore using GORM.
type SignupStore struct {
	entityStore[lead.EarlyAccessSignup, EarlyAccessSignupModel]
}

// NewSignupStore creates a new SignupStore.
func NewSignupStore(db database.Database) SignupStore {
	return SignupStore{entityStore: newEntityStore[lead.EarlyAccessSignup, EarlyAccessSignupModel](db, SignupMapper{}, "early access signup")}
}
