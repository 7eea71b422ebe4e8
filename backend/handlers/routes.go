package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"taskmanager/backend/config"
	"taskmanager/backend/middleware"
	"taskmanager/frontend"
)

// NewRouter assembles the middleware stack and all API routes. Identity
// population runs before the audit middleware so audit records carry the
// authenticated username; enforcement stays per-route.
func NewRouter() http.Handler {
	authRateLimiter := middleware.NewRateLimiter(10, time.Minute)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.C.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.PopulateIdentity)
	r.Use(middleware.RequestAudit(config.C.Logs.RequestLogPath))

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(authRateLimiter.Limit)
		r.Post("/login", Login)
		r.Post("/register", Register)
	})

	r.Route("/api/tasks", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", GetTasks)
		r.Post("/", CreateTask)
		r.Get("/{id}", GetTask)
		r.Put("/{id}", UpdateTask)
		r.Delete("/{id}", DeleteTask)
	})

	r.Route("/api/logs", func(r chi.Router) {
		r.Get("/", GetLogs)
		r.Get("/highpriority", GetHighPriorityLogs)
		r.Get("/daterange", GetLogsByDateRange)
		r.Get("/export", ExportLogs)
	})

	r.Handle("/*", frontend.Handler())

	return r
}
