package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hospitaldao/appointments-api/internal/appointments"
	"github.com/hospitaldao/appointments-api/internal/doctors"
	httpmiddleware "github.com/hospitaldao/appointments-api/internal/http/middleware"
	"github.com/hospitaldao/appointments-api/internal/patients"
	"github.com/hospitaldao/appointments-api/internal/records"
	"github.com/hospitaldao/appointments-api/internal/reminders"
	"github.com/hospitaldao/appointments-api/internal/reports"
	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	AppointmentsHandler *appointments.Handler
	PatientsHandler     *patients.Handler
	DoctorsHandler      *doctors.Handler
	SpecialtiesHandler  *doctors.SpecialtyHandler
	WorkingHoursHandler *doctors.WorkingHourHandler
	RecordsHandler      *records.Handler
	RemindersHandler    *reminders.Handler
	ReportsHandler      *reports.Handler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests per second and burst allowed per client IP on write-heavy
	// booking routes. Zero disables rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
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
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.AppointmentsHandler != nil {
		r.Mount("/appointments", cfg.AppointmentsHandler.Routes())
	}
	if cfg.PatientsHandler != nil {
		r.Mount("/patients", cfg.PatientsHandler.Routes())
	}
	if cfg.DoctorsHandler != nil {
		r.Mount("/doctors", cfg.DoctorsHandler.Routes())
	}
	if cfg.SpecialtiesHandler != nil {
		r.Mount("/specialties", cfg.SpecialtiesHandler.Routes())
	}
	if cfg.WorkingHoursHandler != nil {
		r.Mount("/working-hours", cfg.WorkingHoursHandler.Routes())
	}
	if cfg.RecordsHandler != nil {
		r.Mount("/medical-records", cfg.RecordsHandler.RecordRoutes())
		r.Mount("/prescriptions", cfg.RecordsHandler.PrescriptionRoutes())
	}
	if cfg.RemindersHandler != nil {
		r.Mount("/reminders", cfg.RemindersHandler.Routes())
	}
	if cfg.ReportsHandler != nil {
		r.Mount("/reports", cfg.ReportsHandler.Routes())
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
