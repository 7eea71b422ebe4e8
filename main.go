package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"taskmanager/backend/config"
	"taskmanager/backend/database"
	"taskmanager/backend/events"
	"taskmanager/backend/handlers"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Structured logging to stdout
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if config.UsingDefaultSecret() {
		slog.Warn("JWT_SECRET is not configured, using the built-in default; set it before exposing this server", "source", "main")
	}

	if err := database.Init(config.C.DatabasePath); err != nil {
		log.Fatal("Failed to open database:", err)
	}

	// Schema and seed failures are logged, not fatal to boot.
	if err := database.Migrate(); err != nil {
		slog.Error("database migration failed", "source", "main", "error", err.Error())
	} else if err := database.Seed(); err != nil {
		slog.Error("database seeding failed", "source", "main", "error", err.Error())
	}

	// High-priority task notifications: warning log + critical updates file.
	handlers.TaskEvents = events.NewTaskEventService()
	handlers.TaskEvents.Subscribe(events.CriticalUpdateSubscriber(config.C.Logs.CriticalLogPath))

	router := handlers.NewRouter()

	slog.Info("server starting", "source", "main", "listen", config.C.Listen)
	if config.C.TLS.Enabled {
		log.Fatal(http.ListenAndServeTLS(config.C.Listen, config.C.TLS.Cert, config.C.TLS.Key, router))
	} else {
		log.Fatal(http.ListenAndServe(config.C.Listen, router))
	}
}
