package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/reviewfunnel/funnel/domain/task"
	"github.com/reviewfunnel/funnel/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore implements task.TaskStore using GORM.
type TaskStore struct {
	db     database.Database
	mapper TaskMapper
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db database.Database) TaskStore {
	return TaskStore{
		db:     db,
		mapper: TaskMapper{},
	}
}

// Save creates a new task or updates an existing one.
// Uses dedup_key for conflict resolution.
func (s TaskStore) Save(ctx context.Context, t task.Task) (task.Task, error) {
	model := s.mapper.ToModel(t)

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"priority", "updated_at"}),
	}).Create(&model)

	if result.Error != nil {
		return task.Task{}, fmt.Errorf("save task: %w", result.Error)
	}

	return s.mapper.ToDomain(model), nil
}

// SaveBulk creates or updates multiple tasks.
func (s TaskStore) SaveBulk(ctx context.Context, tasks []task.Task) ([]task.Task, error) {
	if len(tasks) == 0 {
		return []task.Task{}, nil
	}

	models := make([]TaskModel, len(tasks))
	for i, t := range tasks {
		models[i] = s.mapper.ToModel(t)
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"priority", "updated_at"}),
	}).Create(&models)

	if result.Error != nil {
		return nil, fmt.Errorf("save tasks bulk: %w", result.Error)
	}

	saved := make([]task.Task, len(models))
	for i, model := range models {
		saved[i] = s.mapper.ToDomain(model)
	}
	return saved, nil
}

// CountPending returns the number of queued tasks.
func (s TaskStore) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Session(ctx).Model(&TaskModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count pending tasks: %w", err)
	}
	return count, nil
}

// Dequeue retrieves and removes the highest priority task.
func (s TaskStore) Dequeue(ctx context.Context) (task.Task, bool, error) {
	var model TaskModel

	err := s.db.Session(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Order("priority DESC, created_at ASC, id ASC").First(&model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return result.Error
		}
		return tx.Delete(&model).Error
	})

	if err != nil {
		return task.Task{}, false, fmt.Errorf("dequeue task: %w", err)
	}

	if model.ID == 0 {
		return task.Task{}, false, nil
	}

	return s.mapper.ToDomain(model), true, nil
}
