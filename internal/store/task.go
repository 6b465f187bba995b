package store

import (
	"context"

	"github.com/taskchime/taskchime/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// It is the sole source of truth for task records; the scheduler and the
// notification path always read back through it rather than caching tasks.
type TaskStore interface {
	// List retrieves all tasks in insertion order.
	// An empty store yields an empty slice, not an error.
	List(ctx context.Context) ([]domain.Task, error)

	// GetByID retrieves a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Create saves a new task and returns the ID the database assigned.
	// The task must already have passed domain validation; Create wraps
	// validation failures in ErrInvalidEntity.
	Create(ctx context.Context, task *domain.Task) (int64, error)

	// Update overwrites title, due_date, time and recurrence for an
	// existing task. Returns ErrTaskNotFound if no row has the given ID.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID. Deleting a missing ID is a no-op.
	Delete(ctx context.Context, id int64) error

	// Complete marks a task completed. Completing a missing ID is a
	// no-op, and completing an already-completed task leaves it completed.
	Complete(ctx context.Context, id int64) error
}
