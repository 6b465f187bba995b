package api

import "github.com/taskchime/taskchime/internal/domain"

// TaskPayload is the request body for creating or updating a task.
// All four fields are required; status is never client-settable.
type TaskPayload struct {
	Title      string `json:"title"      validate:"required"`
	DueDate    string `json:"due_date"   validate:"required"`
	Time       string `json:"time"       validate:"required"`
	Recurrence string `json:"recurrence" validate:"required"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	DueDate    string `json:"due_date"`
	Time       string `json:"time"`
	Recurrence string `json:"recurrence"`
	Status     string `json:"status"`
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:         task.ID,
		Title:      task.Title,
		DueDate:    task.DueDate,
		Time:       task.TimeOfDay,
		Recurrence: task.Recurrence,
		Status:     string(task.Status),
	}
}
