package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskchime/taskchime/internal/domain"
	"github.com/taskchime/taskchime/internal/notify"
	"github.com/taskchime/taskchime/internal/scheduler"
	"github.com/taskchime/taskchime/internal/store"
)

// TaskService defines the application-level operations on tasks.
// Every mutation keeps the persistent store and the armed reminder
// timers consistent with each other.
type TaskService interface {
	// ListTasks returns all tasks.
	ListTasks(ctx context.Context) ([]domain.Task, error)

	// CreateTask validates, persists and schedules a new task, returning
	// its assigned ID.
	CreateTask(ctx context.Context, title, dueDate, timeOfDay, recurrence string) (int64, error)

	// UpdateTask overwrites a task's fields and re-arms its reminder at
	// the new due instant.
	UpdateTask(ctx context.Context, id int64, title, dueDate, timeOfDay, recurrence string) error

	// DeleteTask removes a task and cancels its pending reminder.
	DeleteTask(ctx context.Context, id int64) error

	// CompleteTask marks a task completed.
	CompleteTask(ctx context.Context, id int64) error
}

// ReminderService implements TaskService on top of a TaskStore, a
// Scheduler and a notification Hub.
type ReminderService struct {
	store  store.TaskStore
	sched  *scheduler.Scheduler
	hub    *notify.Hub
	logger *slog.Logger
}

// Ensure ReminderService satisfies TaskService.
var _ TaskService = (*ReminderService)(nil)

// NewReminderService creates a ReminderService with its dependencies injected.
func NewReminderService(
	taskStore store.TaskStore,
	sched *scheduler.Scheduler,
	hub *notify.Hub,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		store:  taskStore,
		sched:  sched,
		hub:    hub,
		logger: logger.With("component", "reminder_service"),
	}
}

// ListTasks returns all tasks.
func (s *ReminderService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.store.List(ctx)
}

// CreateTask validates and persists a new task, then arms its reminder.
// A scheduler that cannot accept the job does not fail the create; the
// task is stored and the missing reminder is surfaced as a warning.
func (s *ReminderService) CreateTask(
	ctx context.Context,
	title, dueDate, timeOfDay, recurrence string,
) (int64, error) {
	task, err := domain.NewTask(title, dueDate, timeOfDay, recurrence)
	if err != nil {
		return 0, err
	}

	id, err := s.store.Create(ctx, task)
	if err != nil {
		return 0, err
	}

	dueAt, err := task.DueAt()
	if err != nil {
		// Unreachable after Validate, but never leave a stored task
		// half-wired without saying so.
		s.logger.Warn("stored task has unparseable due instant, reminder not armed",
			"task_id", id, "error", err)
		return id, nil
	}

	if _, err := s.sched.Schedule(id, dueAt, s.fireReminder); err != nil {
		s.logger.Warn("reminder could not be scheduled, task stored without trigger",
			"task_id", id, "fire_at", dueAt, "error", err)
	}

	return id, nil
}

// UpdateTask overwrites a task's fields, then cancels and re-arms its
// reminder so the trigger follows the new due instant rather than the old
// one. Returns store.ErrTaskNotFound for a missing ID.
func (s *ReminderService) UpdateTask(
	ctx context.Context,
	id int64,
	title, dueDate, timeOfDay, recurrence string,
) error {
	if id <= 0 {
		return ErrInvalidTaskID
	}

	task := &domain.Task{
		ID:         id,
		Title:      title,
		DueDate:    dueDate,
		TimeOfDay:  timeOfDay,
		Recurrence: recurrence,
	}
	if err := task.Validate(); err != nil {
		return err
	}

	if err := s.store.Update(ctx, task); err != nil {
		return err
	}

	dueAt, err := task.DueAt()
	if err != nil {
		return err
	}

	s.sched.Cancel(id)
	if _, err := s.sched.Schedule(id, dueAt, s.fireReminder); err != nil {
		s.logger.Warn("reminder could not be rescheduled after update",
			"task_id", id, "fire_at", dueAt, "error", err)
	}

	return nil
}

// DeleteTask removes a task and cancels any pending reminder for it.
// Deleting a missing ID is a no-op.
func (s *ReminderService) DeleteTask(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidTaskID
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.sched.Cancel(id)
	return nil
}

// CompleteTask marks a task completed. The reminder, if still pending,
// stays armed; completion is a status change, not a cancellation.
func (s *ReminderService) CompleteTask(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidTaskID
	}

	return s.store.Complete(ctx, id)
}

// RearmPending re-arms reminders for all pending tasks whose due instant
// is still in the future. Called once at startup: armed timers do not
// survive a restart, only the rows do. Past-due pending tasks are left
// alone rather than fired in a burst.
func (s *ReminderService) RearmPending(ctx context.Context) error {
	tasks, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	armed := 0
	for _, task := range tasks {
		if task.Completed() {
			continue
		}

		dueAt, err := task.DueAt()
		if err != nil {
			s.logger.Warn("stored task has unparseable due instant, skipping rearm",
				"task_id", task.ID, "error", err)
			continue
		}
		if !dueAt.After(now) {
			continue
		}

		ok, err := s.sched.Schedule(task.ID, dueAt, s.fireReminder)
		if err != nil {
			return err
		}
		if ok {
			armed++
		}
	}

	s.logger.Info("rearmed pending reminders", "count", armed, "tasks", len(tasks))
	return nil
}

// fireReminder is the scheduler callback. It re-reads the task from the
// store so the published title and time reflect the latest update; a task
// deleted after its timer was armed is expected and skipped silently.
func (s *ReminderService) fireReminder(id int64) {
	ctx := context.Background()

	task, err := s.store.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			s.logger.Debug("reminder fired for deleted task, skipping", "task_id", id)
			return
		}
		s.logger.Error("failed to load task for reminder", "task_id", id, "error", err)
		return
	}

	event, err := notify.NewEvent(notify.EventTypeTaskReminder, notify.ReminderPayload{
		Title: task.Title,
		Time:  task.TimeOfDay,
	})
	if err != nil {
		s.logger.Error("failed to build reminder event", "task_id", id, "error", err)
		return
	}

	if err := s.hub.Publish(event); err != nil {
		s.logger.Warn("reminder event not delivered", "task_id", id, "error", err)
		return
	}

	s.logger.Info("reminder published", "task_id", id, "title", task.Title)
}
