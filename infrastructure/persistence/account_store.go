package persistence

import (
	"context"
	"fmt"

	"github.com/reviewfunnel/funnel/domain/account"
	"github.com/reviewfunnel/funnel/internal/database"
)

// UserStore implements account.UserStore using GORM.
type UserStore struct {
	entityStore[account.User, UserModel]
}

// NewUserStore creates a new UserStore.
func NewUserStore(db database.Database) UserStore {
	return UserStore{entityStore: newEntityStore[account.User, UserModel](db, UserMapper{}, "user")}
}

// ResetStore implements account.ResetStore using GORM.
type ResetStore struct {
	entityStore[account.PasswordReset, PasswordResetModel]
}

// NewResetStore creates a new ResetStore.
func NewResetStore(db database.Database) ResetStore {
	return ResetStore{entityStore: newEntityStore[account.PasswordReset, PasswordResetModel](db, ResetMapper{}, "password reset")}
}

// Consume marks r used only if the row has no used_at yet, so two requests
// holding the same token cannot both reset the password.
func (s ResetStore) Consume(ctx context.Context, r account.PasswordReset) error {
	model := s.Mapper().ToModel(r)
	result := s.DB(ctx).Model(&PasswordResetModel{}).
		Where("id = ? AND used_at IS NULL", model.ID).
		Update("used_at", model.UsedAt)
	if result.Error != nil {
		return fmt.Errorf("consume password reset: %w", result.Error)
	}
	if result.RowsAffected != 1 {
		return account.ErrResetUsed
	}
	return nil
}
