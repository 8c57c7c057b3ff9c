package doctors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// WorkingHourHandler exposes doctor availability slots over HTTP.
type WorkingHourHandler struct {
	store  *WorkingHourStore
	logger *logging.Logger
}

// NewWorkingHourHandler creates a working hour HTTP handler.
func NewWorkingHourHandler(store *WorkingHourStore, logger *logging.Logger) *WorkingHourHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WorkingHourHandler{store: store, logger: logger}
}

// Routes mounts the working hour endpoints on a chi router.
func (h *WorkingHourHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/doctor/{doctorID}", h.ListByDoctor)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type workingHourRequest struct {
	DoctorID  int64  `json:"doctor_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (req *workingHourRequest) validate() string {
	if req.DoctorID == 0 || req.Weekday == "" || req.StartTime == "" || req.EndTime == "" {
		return "doctor_id, weekday, start_time and end_time are required"
	}
	return ""
}

// Create adds an availability slot.
// POST /working-hours
func (h *WorkingHourHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req workingHourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	wh := &WorkingHour{DoctorID: req.DoctorID, Weekday: req.Weekday, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := h.store.Create(r.Context(), wh); err != nil {
		h.logger.Error("failed to create working hour", "doctor_id", req.DoctorID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, wh)
}

// List returns availability slots with skip/limit pagination.
// GET /working-hours?skip=0&limit=100
func (h *WorkingHourHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	hours, err := h.store.List(r.Context(), limit, skip)
	if err != nil {
		h.logger.Error("failed to list working hours", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

// ListByDoctor returns a doctor's availability slots.
// GET /working-hours/doctor/{doctorID}
func (h *WorkingHourHandler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "doctorID")
	if !ok {
		return
	}
	hours, err := h.store.ListByDoctor(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list working hours by doctor", "doctor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, hours)
}

// Get returns a single availability slot.
// GET /working-hours/{id}
func (h *WorkingHourHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	wh, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get working hour", "working_hour_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if wh == nil {
		writeError(w, http.StatusNotFound, "Horario no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, wh)
}

// Update overwrites an availability slot.
// PUT /working-hours/{id}
func (h *WorkingHourHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req workingHourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	wh := &WorkingHour{ID: id, DoctorID: req.DoctorID, Weekday: req.Weekday, StartTime: req.StartTime, EndTime: req.EndTime}
	updated, err := h.store.Update(r.Context(), wh)
	if err != nil {
		h.logger.Error("failed to update working hour", "working_hour_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Horario no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes an availability slot.
// DELETE /working-hours/{id}
func (h *WorkingHourHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete working hour", "working_hour_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Horario no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Horario eliminado correctamente"})
}
