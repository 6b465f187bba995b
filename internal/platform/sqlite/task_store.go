package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/taskchime/taskchime/internal/domain"
	"github.com/taskchime/taskchime/internal/platform/logger"
	"github.com/taskchime/taskchime/internal/store"
)

// TaskStore implements the store.TaskStore interface using SQLite.
// Every operation runs a single short-lived statement against the shared
// connection pool; nothing holds a lock across a suspension point.
type TaskStore struct {
	db store.DBTX
}

// Ensure TaskStore satisfies store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a new TaskStore backed by the given database handle.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// List retrieves all tasks in insertion order.
func (s *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	query := `
		SELECT id, title, due_date, time, recurrence, status
		FROM tasks
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, store.NewStoreError("task", "list", "failed to query tasks", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.DueDate, &t.TimeOfDay, &t.Recurrence, &t.Status); err != nil {
			return nil, store.NewStoreError("task", "list", "failed to scan task row", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "row iteration failed", err)
	}

	return tasks, nil
}

// GetByID retrieves a task by its ID.
// Returns store.ErrTaskNotFound if no row has the given ID.
func (s *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `
		SELECT id, title, due_date, time, recurrence, status
		FROM tasks
		WHERE id = ?
	`

	var t domain.Task
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.Title, &t.DueDate, &t.TimeOfDay, &t.Recurrence, &t.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get", fmt.Sprintf("failed to get task %d", id), err)
	}

	return &t, nil
}

// Create saves a new task and returns the assigned ID.
// Status is left to the column default ('pending'), matching the schema.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) (int64, error) {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (title, due_date, time, recurrence)
		VALUES (?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.DueDate,
		task.TimeOfDay,
		task.Recurrence,
	)
	if err != nil {
		log.Error("failed to insert task", "title", task.Title, "error", err)
		return 0, store.NewStoreError("task", "create", "failed to insert task", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, store.NewStoreError("task", "create", "failed to read inserted id", err)
	}

	task.ID = id
	task.Status = domain.TaskStatusPending
	return id, nil
}

// Update overwrites title, due_date, time and recurrence for an existing task.
// Returns store.ErrTaskNotFound when no row matches, so a missing ID is
// surfaced instead of silently succeeding with zero rows affected.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = ?, due_date = ?, time = ?, recurrence = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.DueDate,
		task.TimeOfDay,
		task.Recurrence,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task", "task_id", task.ID, "error", err)
		return store.NewStoreError("task", "update", fmt.Sprintf("failed to update task %d", task.ID), err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("task", "update", "failed to read rows affected", err)
	}
	if affected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// Delete removes a task by ID. Deleting a missing ID is a no-op.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM tasks WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return store.NewStoreError("task", "delete", fmt.Sprintf("failed to delete task %d", id), err)
	}

	return nil
}

// Complete marks a task completed. Completing a missing ID is a no-op, and
// the operation is idempotent for already-completed tasks.
func (s *TaskStore) Complete(ctx context.Context, id int64) error {
	query := `UPDATE tasks SET status = ? WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query, domain.TaskStatusCompleted, id); err != nil {
		return store.NewStoreError("task", "complete", fmt.Sprintf("failed to complete task %d", id), err)
	}

	return nil
}
