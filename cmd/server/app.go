package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskchime/taskchime/internal/config"
	"github.com/taskchime/taskchime/internal/notify"
	"github.com/taskchime/taskchime/internal/platform/sqlite"
	"github.com/taskchime/taskchime/internal/scheduler"
	"github.com/taskchime/taskchime/internal/service"
)

// application holds the assembled dependencies of the running server.
// Everything is built here and injected downward; no package keeps
// process-wide singletons of its own.
type application struct {
	config *config.Config
	logger *slog.Logger

	db      *sql.DB
	sched   *scheduler.Scheduler
	hub     *notify.Hub
	service *service.ReminderService
}

// newApplication wires the store, scheduler, hub and service together.
// The database schema is migrated here so the tasks table exists before
// the first request or rearm pass.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := sqlite.Open(cfg.Database.Path, cfg.Database.BusyTimeoutMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlite.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	taskStore := sqlite.NewTaskStore(db)
	sched := scheduler.New(logger)
	hub := notify.NewHub(notify.HubConfig{
		QueueSize:        cfg.Notify.QueueSize,
		SubscriberBuffer: cfg.Notify.SubscriberBuffer,
	}, logger)

	return &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		sched:   sched,
		hub:     hub,
		service: service.NewReminderService(taskStore, sched, hub, logger),
	}, nil
}

// start launches the background components.
func (app *application) start() {
	app.hub.Start()
}

// cleanup releases resources in reverse dependency order: stop arming and
// firing timers first, then the delivery path, then the database.
func (app *application) cleanup() {
	app.sched.Stop()
	app.hub.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}
