// Package main implements the entry point for the taskchime server, which
// stores reminder tasks and pushes a task_reminder event to connected
// websocket clients when a task's due instant arrives.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/taskchime/taskchime/internal/config"
	"github.com/taskchime/taskchime/internal/platform/logger"
)

func main() {
	app, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration, sets up logging and assembles the
// application components, including re-arming reminders for pending tasks
// that survived a restart.
func initializeApp() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_path", cfg.Database.Path)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	app.start()

	// Armed timers do not survive a restart; rebuild them from the rows.
	if err := app.service.RearmPending(context.Background()); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to rearm pending reminders: %w", err)
	}

	return app, nil
}
