package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/airac-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET  /health
//	GET  /api/v1/cycles/current
//	GET  /api/v1/cycles/date/{date}
//	GET  /api/v1/cycles/identifier/{identifier}
//	GET  /api/v1/cycles/range?start=YYYY-MM-DD&end=YYYY-MM-DD
//	GET  /api/v1/calendar/{year}
//	POST /api/v1/calendar/{year}            (API key)
//
// Every cycle and calendar route accepts ?weeks=N to override the cycle length.
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		RecoveryMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		CORSMiddleware(),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", CodeMethodNotAllowed)
	})

	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cycles", func(r chi.Router) {
			r.Get("/current", handlers.GetCurrentCycle)
			r.Get("/date/{date}", handlers.GetCycleByDate)
			r.Get("/identifier/{identifier}", handlers.GetCycleByIdentifier)
			r.Get("/range", handlers.GetCycleRange)
		})

		r.Get("/calendar/{year}", handlers.GetCalendar)
		r.With(AuthMiddleware(cfg, logger)).Post("/calendar/{year}", handlers.RegenerateCalendar)
	})

	return r
}
