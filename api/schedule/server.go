// Package schedule exposes the planner over HTTP.
package schedule

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/kilianp07/docksched/core/audit"
	"github.com/kilianp07/docksched/core/edit"
	"github.com/kilianp07/docksched/core/gates"
	"github.com/kilianp07/docksched/core/logger"
	"github.com/kilianp07/docksched/core/model"
	"github.com/kilianp07/docksched/core/stats"
)

// maxBodyBytes bounds edit and move payloads.
const maxBodyBytes = 64 << 10

// Planner is the subset of the planner the API drives.
type Planner interface {
	Snapshot(ctx context.Context, day string) ([]model.Appointment, error)
	Refresh(ctx context.Context, day string) ([]model.Appointment, error)
	Edit(ctx context.Context, day, id string, req edit.Request) (model.Appointment, error)
	Move(ctx context.Context, day, id string, req edit.MoveRequest) (model.Appointment, error)
	MarkArrived(ctx context.Context, day, id string, at time.Time) (model.Appointment, error)
	Delete(ctx context.Context, day, id string) error
	Visible(items []model.Appointment) []gates.Gate
	History(ctx context.Context, base time.Time) []stats.DayStats
	Stats(ctx context.Context, day string) (stats.Report, error)
	Directory() *gates.Directory
	Location() *time.Location
	Today() string
}

// Options configures the router.
type Options struct {
	// Token, when set, is required as "Bearer <token>" on /api routes.
	Token          string
	AllowedOrigins []string
	Audit          audit.LogStore
	Now            func() time.Time
}

// Server holds the handler dependencies.
type Server struct {
	planner Planner
	audit   audit.LogStore
	log     logger.Logger
	now     func() time.Time
}

// NewRouter builds the chi router serving the schedule API.
func NewRouter(p Planner, log logger.Logger, opts Options) http.Handler {
	s := &Server{planner: p, audit: opts.Audit, log: log, now: opts.Now}
	if s.audit == nil {
		s.audit = audit.NopStore{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		}).Handler)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(bearer(opts.Token))
		r.Get("/gates", s.listGates)
		r.Get("/history", s.history)
		r.Get("/history.csv", s.historyCSV)
		r.Get("/history/chart", s.historyChart)
		r.Get("/audit", s.auditLog)
		r.Route("/days/{day}", func(r chi.Router) {
			r.Use(dayParam(p.Location()))
			r.Get("/appointments", s.listAppointments)
			r.Get("/stats", s.dayStats)
			r.Get("/export.csv", s.exportDay)
			r.Post("/refresh", s.refresh)
			r.Route("/appointments/{id}", func(r chi.Router) {
				r.Use(chimiddleware.RequestSize(maxBodyBytes))
				r.Put("/", s.editAppointment)
				r.Post("/move", s.moveAppointment)
				r.Post("/arrive", s.markArrived)
				r.Delete("/", s.deleteAppointment)
			})
		})
	})
	return r
}
