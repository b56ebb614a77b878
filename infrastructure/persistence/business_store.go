package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/reviewfunnel/funnel/domain/business"
	"github.com/reviewfunnel/funnel/internal/database"
	"gorm.io/gorm/clause"
)

// BusinessStore implements business.BusinessStore using GORM.
type BusinessStore struct {
	entityStore[business.Business, BusinessModel]
}

// NewBusinessStore creates a new BusinessStore.
func NewBusinessStore(db database.Database) BusinessStore {
	return BusinessStore{entityStore: newEntityStore[business.Business, BusinessModel](db, BusinessMapper{}, "business")}
}

// TemplateStore implements business.TemplateStore using GORM.
type TemplateStore struct {
	entityStore[business.ReviewTemplate, ReviewTemplateModel]
}

// NewTemplateStore creates a new TemplateStore.
func NewTemplateStore(db database.Database) TemplateStore {
	return TemplateStore{entityStore: newEntityStore[business.ReviewTemplate, ReviewTemplateModel](db, TemplateMapper{}, "review template")}
}

// Upsert inserts the template or replaces the body of the existing one for
// the same business and platform.
func (s TemplateStore) Upsert(ctx context.Context, t business.ReviewTemplate) (business.ReviewTemplate, error) {
	model := s.Mapper().ToModel(t)
	model.ID = 0
	now := time.Now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	result := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "business_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return business.ReviewTemplate{}, fmt.Errorf("upsert review template: %w", result.Error)
	}

	// The returned id is unreliable after an update on some drivers.
	var stored ReviewTemplateModel
	err := s.DB(ctx).
		Where("business_id = ? AND platform = ?", model.BusinessID, model.Platform).
		First(&stored).Error
	if err != nil {
		return business.ReviewTemplate{}, fmt.Errorf("reload review template: %w", err)
	}
	return s.Mapper().ToDomain(stored), nil
}
