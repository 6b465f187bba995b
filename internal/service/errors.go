package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidTaskID indicates a task ID that cannot identify a row,
	// such as zero or a negative value.
	ErrInvalidTaskID = errors.New("invalid task ID")
)
