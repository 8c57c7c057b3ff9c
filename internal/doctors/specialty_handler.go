package doctors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// SpecialtyHandler exposes the specialty catalog over HTTP.
type SpecialtyHandler struct {
	store  *SpecialtyStore
	logger *logging.Logger
}

// NewSpecialtyHandler creates a specialty HTTP handler.
func NewSpecialtyHandler(store *SpecialtyStore, logger *logging.Logger) *SpecialtyHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &SpecialtyHandler{store: store, logger: logger}
}

// Routes mounts the specialty endpoints on a chi router.
func (h *SpecialtyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type specialtyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create adds a specialty to the catalog.
// POST /specialties
func (h *SpecialtyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req specialtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	sp := &Specialty{Name: req.Name, Description: req.Description}
	if err := h.store.Create(r.Context(), sp); err != nil {
		h.logger.Error("failed to create specialty", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, sp)
}

// List returns specialties with skip/limit pagination.
// GET /specialties?skip=0&limit=100
func (h *SpecialtyHandler) List(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	specs, err := h.store.List(r.Context(), limit, skip)
	if err != nil {
		h.logger.Error("failed to list specialties", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, specs)
}

// Get returns a single specialty.
// GET /specialties/{id}
func (h *SpecialtyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	sp, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get specialty", "specialty_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if sp == nil {
		writeError(w, http.StatusNotFound, "Specialty not found")
		return
	}
	writeJSON(w, http.StatusOK, sp)
}

// Update overwrites a specialty.
// PUT /specialties/{id}
func (h *SpecialtyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req specialtyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	updated, err := h.store.Update(r.Context(), &Specialty{ID: id, Name: req.Name, Description: req.Description})
	if err != nil {
		h.logger.Error("failed to update specialty", "specialty_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "Specialty not found")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a specialty.
// DELETE /specialties/{id}
func (h *SpecialtyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to delete specialty", "specialty_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Specialty not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Specialty deleted successfully"})
}
