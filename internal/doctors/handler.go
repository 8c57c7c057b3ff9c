package doctors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Handler exposes doctor CRUD over HTTP.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a doctor HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Routes mounts the doctor endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type doctorRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	LicenseNumber string  `json:"license_number"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Address       string  `json:"address"`
	Specialties   []int64 `json:"specialties"`
}

// Create registers a new doctor, rejecting duplicate license numbers.
// POST /doctors
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.LicenseNumber == "" {
		writeError(w, http.StatusBadRequest, "first_name, last_name and license_number are required")
		return
	}

	taken, err := h.store.LicenseExists(r.Context(), req.LicenseNumber, 0)
	if err != nil {
		h.logger.Error("failed to check doctor license", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusBadRequest, "Ya existe un médico con esa matrícula")
		return
	}

	d := &Doctor{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		LicenseNumber: req.LicenseNumber,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	if err := h.store.Create(r.Context(), d, req.Specialties); err != nil {
		h.logger.Error("failed to create doctor", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// List returns doctors with skip/limit pagination.
// GET /doctors?skip=0&limit=100
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	docs, err := h.store.List(r.Context(), limit, skip)
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if docs == nil {
		docs = []Doctor{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// Get returns a single doctor with specialties.
// GET /doctors/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get doctor", "doctor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if d == nil {
		writeError(w, http.StatusNotFound, "Doctor no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Update overwrites a doctor's details and specialty assignments.
// PUT /doctors/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req doctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" || req.LicenseNumber == "" {
		writeError(w, http.StatusBadRequest, "first_name, last_name and license_number are required")
		return
	}

	taken, err := h.store.LicenseExists(r.Context(), req.LicenseNumber, id)
	if err != nil {
		h.logger.Error("failed to check doctor license", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if taken {
		writeError(w, http.StatusBadRequest, "Ya existe un médico con esa matrícula")
		return
	}

	d := &Doctor{
		ID:            id,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		LicenseNumber: req.LicenseNumber,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	updated, err := h.store.Update(r.Context(), d, req.Specialties)
	if err != nil {
		h.logger.Error("failed to update doctor", "doctor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Doctor no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a doctor.
// DELETE /doctors/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete doctor", "doctor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Doctor no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Doctor eliminado correctamente"})
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

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
