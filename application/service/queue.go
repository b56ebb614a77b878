package service

import (
	"context"
	"log/slog"

	"github.com/reviewfunnel/funnel/domain/task"
)

// Queue provides the main interface for enqueuing outbound work.
type Queue struct {
	store  task.TaskStore
	logger *slog.Logger
}

// NewQueue creates a new queue service.
func NewQueue(store task.TaskStore, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		logger: logger,
	}
}

// Enqueue adds a task to the queue.
// If a task with the same dedup_key exists, it updates the priority instead.
func (s *Queue) Enqueue(ctx context.Context, t task.Task) error {
	_, err := s.store.Save(ctx, t)
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "task enqueued",
		slog.String("dedup_key", t.DedupKey()),
		slog.String("operation", t.Operation().String()),
	)
	return nil
}

// Notify enqueues tasks after the work that produced them has committed.
// Failures are logged and never returned: a lost email must not undo a
// signup or a payment.
func (s *Queue) Notify(ctx context.Context, tasks ...task.Task) {
	for _, t := range tasks {
		if err := s.Enqueue(ctx, t); err != nil {
			s.logger.WarnContext(ctx, "failed to enqueue notification",
				slog.String("operation", t.Operation().String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Count returns the total number of pending tasks.
func (s *Queue) Count(ctx context.Context) (int64, error) {
	return s.store.CountPending(ctx)
}
