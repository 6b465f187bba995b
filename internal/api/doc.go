// Package api contains the HTTP handlers for the task-reminder service:
// task CRUD endpoints, the websocket subscription endpoint, and the
// mapping from internal errors to HTTP status codes and safe messages.
package api
