package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carewell/scheduling-platform/internal/appointments"
	httpmiddleware "github.com/carewell/scheduling-platform/internal/http/middleware"
	"github.com/carewell/scheduling-platform/internal/identity"
	"github.com/carewell/scheduling-platform/internal/slots"
	"github.com/carewell/scheduling-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	SlotsHandler        *slots.Handler
	AppointmentsHandler *appointments.Handler
	AuthSecret          string
	Resolver            identity.Resolver
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated routes: the caller's role identity is resolved once
	// here, before any handler runs.
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.Auth(cfg.AuthSecret, cfg.Resolver))

		if cfg.SlotsHandler != nil {
			authed.Route("/slots", func(r chi.Router) {
				r.Post("/", cfg.SlotsHandler.CreateSlot)
				r.Put("/{slotID}", cfg.SlotsHandler.UpdateSlot)
				r.Delete("/{slotID}", cfg.SlotsHandler.DeleteSlot)
			})
			authed.Get("/doctors/{doctorID}/slots", cfg.SlotsHandler.ListSlots)
		}

		if cfg.AppointmentsHandler != nil {
			authed.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.AppointmentsHandler.CreateAppointment)
				r.Get("/", cfg.AppointmentsHandler.ListAppointments)
				r.Patch("/{appointmentID}", cfg.AppointmentsHandler.UpdateAppointmentStatus)
			})
		}
	})

	return r
}
