/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through the handler's slog logger
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for web clients

ROUTE GROUPS:
  /health               Liveness
  /api/users/{id}/*     Attendance, history, purge, chat commands
  /api/admin/*          Admin operations

SECURITY NOTE:
  No authentication middleware. The user id in the path is trusted, the
  same way a chat platform's sender id is.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(slogFormatter{logger: h.logger}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{id}", func(r chi.Router) {
			r.Post("/arrival", h.RecordArrival)
			r.Post("/departure", h.RecordDeparture)
			r.Put("/times", h.SetTime)
			r.Post("/records", h.ApplyUpdate)
			r.Delete("/records", h.PurgeRecords)
			r.Get("/history", h.GetHistory)
			r.Post("/commands", h.RunCommand)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/compact", h.Compact)
		})
	})

	return r
}
