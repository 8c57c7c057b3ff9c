package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Handler exposes appointment use cases over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointment HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the appointment endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/doctor/{doctorID}", h.ListByDoctor)
	r.Get("/patient/{patientID}", h.ListByPatient)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
	return r
}

type createRequest struct {
	PatientID int64     `json:"patient_id"`
	DoctorID  int64     `json:"doctor_id"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	Notes     string    `json:"notes"`
}

type statusRequest struct {
	Status Status `json:"status"`
}

// Create books a new appointment.
// POST /appointments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PatientID == 0 || req.DoctorID == 0 {
		writeError(w, http.StatusBadRequest, "patient_id and doctor_id are required")
		return
	}

	appt, err := h.service.Create(r.Context(), CreateInput{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		Notes:     req.Notes,
	})
	switch {
	case errors.Is(err, ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, "start_at must be before end_at")
	case errors.Is(err, ErrSchedulingConflict):
		writeError(w, http.StatusBadRequest, "El médico ya tiene un turno en ese horario. Por favor elegí otro horario.")
	case err != nil:
		h.logger.Error("failed to create appointment", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusCreated, appt)
	}
}

// List returns appointments with skip/limit pagination.
// GET /appointments?skip=0&limit=100
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	appts, err := h.service.List(r.Context(), limit, skip)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(appts))
}

// Get returns a single appointment.
// GET /appointments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	appt, err := h.service.Get(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Turno no encontrado")
		return
	}
	if err != nil {
		h.logger.Error("failed to get appointment", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// ListByDoctor returns a doctor's appointments.
// GET /appointments/doctor/{doctorID}
func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "doctorID")
	if !ok {
		return
	}
	appts, err := h.service.ListByDoctor(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list appointments by doctor", "doctor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(appts))
}

// ListByPatient returns a patient's appointments.
// GET /appointments/patient/{patientID}
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "patientID")
	if !ok {
		return
	}
	appts, err := h.service.ListByPatient(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list appointments by patient", "patient_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(appts))
}

// UpdateStatus sets the appointment status.
// PATCH /appointments/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	appt, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	switch {
	case errors.Is(err, ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid status")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "Turno no encontrado")
	case err != nil:
		h.logger.Error("failed to update appointment status", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusOK, appt)
	}
}

// Delete removes an appointment.
// DELETE /appointments/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.service.Delete(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Turno no encontrado")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete appointment", "appointment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Turno eliminado correctamente"})
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

func emptyIfNil(appts []Appointment) []Appointment {
	if appts == nil {
		return []Appointment{}
	}
	return appts
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
