// Package task holds the outbound work queue types: emails and analytics
// events that are recorded during a request and delivered later by a worker.
package task

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Priority orders queued tasks; higher runs first.
type Priority int

// Priority values.
const (
	PriorityBackground    Priority = 1000
	PriorityNormal        Priority = 2000
	PriorityUserInitiated Priority = 5000
	PriorityCritical      Priority = 10000
)

// Task is a unit of queued work. A row existing means it is still pending.
type Task struct {
	id        int64
	dedupKey  string
	operation Operation
	priority  int
	payload   map[string]any
	createdAt time.Time
	updatedAt time.Time
}

// NewTask creates a task whose dedup key is derived from the operation and
// the full payload, so identical work queued twice collapses into one row.
func NewTask(operation Operation, priority Priority, payload map[string]any) Task {
	p := copyPayload(payload)
	return Task{
		dedupKey:  payloadDedupKey(operation, p),
		operation: operation,
		priority:  int(priority),
		payload:   p,
	}
}

// NewTaskWithKey creates a task with an explicit dedup key.
func NewTaskWithKey(operation Operation, priority Priority, key string, payload map[string]any) Task {
	return Task{
		dedupKey:  fmt.Sprintf("%s:%s", operation, key),
		operation: operation,
		priority:  int(priority),
		payload:   copyPayload(payload),
	}
}

// ReconstructTask rebuilds a Task from storage.
func ReconstructTask(
	id int64,
	dedupKey string,
	operation Operation,
	priority int,
	payload map[string]any,
	createdAt, updatedAt time.Time,
) Task {
	return Task{
		id:        id,
		dedupKey:  dedupKey,
		operation: operation,
		priority:  priority,
		payload:   copyPayload(payload),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the task ID.
func (t Task) ID() int64 { return t.id }

// DedupKey returns the deduplication key.
func (t Task) DedupKey() string { return t.dedupKey }

// Operation returns the task operation.
func (t Task) Operation() Operation { return t.operation }

// Priority returns the task priority.
func (t Task) Priority() int { return t.priority }

// Payload returns a copy of the task payload.
func (t Task) Payload() map[string]any {
	return copyPayload(t.payload)
}

// CreatedAt returns when the task was created.
func (t Task) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the task was last updated.
func (t Task) UpdatedAt() time.Time { return t.updatedAt }

// WithID returns a copy of the task with the given ID.
func (t Task) WithID(id int64) Task {
	t.id = id
	return t
}

// PayloadJSON returns the payload as JSON bytes.
func (t Task) PayloadJSON() ([]byte, error) {
	return json.Marshal(t.payload)
}

// payloadDedupKey hashes the payload; json.Marshal sorts map keys.
func payloadDedupKey(operation Operation, payload map[string]any) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = fmt.Appendf(nil, "%v", payload)
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("%s:%s", operation, hex.EncodeToString(sum[:12]))
}

func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(payload))
	maps.Copy(result, payload)
	return result
}
