package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/taskchime/taskchime/internal/api"
	apiMiddleware "github.com/taskchime/taskchime/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware, mirroring the request surface the frontend consumes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	taskHandler := api.NewTaskHandler(app.service, app.logger)
	eventsHandler := api.NewEventsHandler(app.hub, app.allowOrigin, app.logger)

	// Register routes
	r.Get("/tasks", taskHandler.ListTasks)
	r.Post("/tasks", taskHandler.CreateTask)
	r.Put("/tasks/{id}", taskHandler.UpdateTask)
	r.Delete("/tasks/{id}", taskHandler.DeleteTask)
	r.Patch("/tasks/{id}/complete", taskHandler.CompleteTask)

	r.Get("/ws", eventsHandler.Subscribe)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}

// allowOrigin applies the configured CORS origins to websocket upgrades,
// which bypass the regular CORS middleware.
func (app *application) allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range app.config.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
