package task

import (
	"context"

	"github.com/codeBunny2022/CentrAlignWebapp/domain/store"
)

// TaskStore defines persistence operations for tasks.
type TaskStore interface {
	// Get retrieves a task by ID.
	Get(ctx context.Context, id int64) (Task, error)

	// FindPending retrieves pending tasks ordered by priority.
	FindPending(ctx context.Context, options ...store.Option) ([]Task, error)

	// Save creates a new task or updates an existing one.
	// Uses dedup_key for conflict resolution - if a task with the same
	// dedup_key exists, its priority is bumped instead of creating a duplicate.
	Save(ctx context.Context, t Task) (Task, error)

	// SaveBulk creates or updates multiple tasks.
	SaveBulk(ctx context.Context, tasks []Task) ([]Task, error)

	// Delete removes a task.
	Delete(ctx context.Context, t Task) error

	// DeleteAll removes every queued task.
	DeleteAll(ctx context.Context) error

	// CountPending returns the number of pending tasks matching the options.
	CountPending(ctx context.Context, options ...store.Option) (int64, error)

	// Dequeue atomically claims and removes the highest-priority pending task.
	// Returns false when the queue is empty.
	Dequeue(ctx context.Context) (Task, bool, error)
}
