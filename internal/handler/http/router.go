package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/field-attendance/internal/config"
	"github.com/cmlabs-hris/field-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/field-attendance/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
)

// NewRouter wires the attendance API. metricsHandler is mounted at /metrics when non-nil.
func NewRouter(cfg *config.Config, logger *slog.Logger, attendanceHandler AttendanceHandler, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
		// The event stream stays open for the whole session.
		Skip: func(req *http.Request, respStatus int) bool {
			return req.URL.Path == "/api/v1/attendance/events"
		},
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	r.Route("/api/v1/attendance", func(r chi.Router) {
		if cfg.RateLimit.RequestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
		}

		r.With(middleware.RateLimit(cfg.RateLimit.LocationPerSec, cfg.RateLimit.LocationBurst)).
			Post("/location", attendanceHandler.UpdateLocation)

		r.Post("/check-in", attendanceHandler.CheckIn)
		r.Post("/check-out", attendanceHandler.CheckOut)
		r.Post("/submit", attendanceHandler.Submit)
		r.Post("/reset", attendanceHandler.Reset)
		r.Get("/today", attendanceHandler.Today)
		r.Get("/dashboard", attendanceHandler.Dashboard)
		r.Get("/team", attendanceHandler.Team)
		r.Get("/events", attendanceHandler.Events)

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/", attendanceHandler.Calendar)
			r.Post("/prev", attendanceHandler.PrevMonth)
			r.Post("/next", attendanceHandler.NextMonth)
		})
	})

	return r
}
