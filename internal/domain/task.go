package domain

import (
	"fmt"
	"time"
)

// Task-specific validation errors
var (
	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = fmt.Errorf("%w: title cannot be empty", ErrValidation)

	// ErrTaskDueDateEmpty is returned when a task's due date is empty.
	ErrTaskDueDateEmpty = fmt.Errorf("%w: due_date cannot be empty", ErrValidation)

	// ErrTaskTimeEmpty is returned when a task's time of day is empty.
	ErrTaskTimeEmpty = fmt.Errorf("%w: time cannot be empty", ErrValidation)

	// ErrTaskRecurrenceEmpty is returned when a task's recurrence is empty.
	ErrTaskRecurrenceEmpty = fmt.Errorf("%w: recurrence cannot be empty", ErrValidation)

	// ErrTaskDueUnparseable is returned when due_date and time do not combine
	// into a valid instant.
	ErrTaskDueUnparseable = fmt.Errorf("%w: due_date and time must form a valid timestamp", ErrValidation)
)

// Layouts for the textual due_date and time columns.
const (
	DueDateLayout   = "2006-01-02"
	TimeOfDayLayout = "15:04"
)

// TaskStatus represents the completion state of a task.
type TaskStatus string

// Possible task status values. A task starts as pending and only ever
// moves to completed; there is no transition back.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task represents a reminder record with a due timestamp and completion status.
// DueDate and TimeOfDay are kept as text, mirroring the persisted columns;
// DueAt combines them into the instant the reminder fires at.
type Task struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	DueDate    string     `json:"due_date"`
	TimeOfDay  string     `json:"time"`
	Recurrence string     `json:"recurrence"`
	Status     TaskStatus `json:"status"`
}

// NewTask creates a pending Task with the given fields. The ID is zero until
// the store assigns one. Returns an error if validation fails.
func NewTask(title, dueDate, timeOfDay, recurrence string) (*Task, error) {
	task := &Task{
		Title:      title,
		DueDate:    dueDate,
		TimeOfDay:  timeOfDay,
		Recurrence: recurrence,
		Status:     TaskStatusPending,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that every required field is present and that the due
// date and time combine into a real instant.
func (t *Task) Validate() error {
	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if t.DueDate == "" {
		return ErrTaskDueDateEmpty
	}

	if t.TimeOfDay == "" {
		return ErrTaskTimeEmpty
	}

	if t.Recurrence == "" {
		return ErrTaskRecurrenceEmpty
	}

	if _, err := ParseDueAt(t.DueDate, t.TimeOfDay); err != nil {
		return err
	}

	return nil
}

// DueAt returns the instant the task is due at.
func (t *Task) DueAt() (time.Time, error) {
	return ParseDueAt(t.DueDate, t.TimeOfDay)
}

// Completed reports whether the task has been marked completed.
func (t *Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}

// ParseDueAt combines a due date and a time of day into a single instant
// in the local time zone. Returns ErrTaskDueUnparseable if either part is
// not in its expected layout.
func ParseDueAt(dueDate, timeOfDay string) (time.Time, error) {
	at, err := time.ParseInLocation(
		DueDateLayout+" "+TimeOfDayLayout,
		dueDate+" "+timeOfDay,
		time.Local,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTaskDueUnparseable, err)
	}
	return at, nil
}
