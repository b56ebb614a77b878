package task

import "context"

// TaskStore persists queued tasks.
type TaskStore interface {
	// Save enqueues t. A task with the same dedup key is not duplicated;
	// its priority is raised instead.
	Save(ctx context.Context, t Task) (Task, error)
	SaveBulk(ctx context.Context, tasks []Task) ([]Task, error)

	// Dequeue removes and returns the highest priority task, oldest first.
	// The bool is false when the queue is empty.
	Dequeue(ctx context.Context) (Task, bool, error)

	CountPending(ctx context.Context) (int64, error)
}
