package reminders

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Handler exposes reminder rows over HTTP, mainly for inspection and for
// scheduling one-off reminders by hand.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a reminder HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Routes mounts the reminder endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/appointment/{appointmentID}", h.ListByAppointment)
	return r
}

type createRequest struct {
	AppointmentID int64     `json:"appointment_id"`
	Channel       string    `json:"channel"`
	Message       string    `json:"message"`
	SendAt        time.Time `json:"send_at"`
}

// Create schedules a reminder manually.
// POST /reminders
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AppointmentID == 0 || req.SendAt.IsZero() {
		writeError(w, http.StatusBadRequest, "appointment_id and send_at are required")
		return
	}

	rem := &Reminder{
		AppointmentID: req.AppointmentID,
		Channel:       req.Channel,
		Message:       req.Message,
		SendAt:        req.SendAt,
	}
	if err := h.store.Create(r.Context(), rem); err != nil {
		h.logger.Error("failed to create reminder", "appointment_id", req.AppointmentID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

// List returns reminders with skip/limit pagination.
// GET /reminders?skip=0&limit=100
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	rems, err := h.store.List(r.Context(), limit, skip)
	if err != nil {
		h.logger.Error("failed to list reminders", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(rems))
}

// Get returns a single reminder.
// GET /reminders/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rem, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get reminder", "reminder_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if rem == nil {
		writeError(w, http.StatusNotFound, "Recordatorio no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

// ListByAppointment returns all reminders for an appointment.
// GET /reminders/appointment/{appointmentID}
func (h *Handler) ListByAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "appointmentID")
	if !ok {
		return
	}
	rems, err := h.store.ListByAppointment(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list reminders by appointment", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(rems))
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func emptyIfNil(rems []Reminder) []Reminder {
	if rems == nil {
		return []Reminder{}
	}
	return rems
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
