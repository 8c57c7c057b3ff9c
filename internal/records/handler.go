package records

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Handler exposes medical records and prescriptions over HTTP.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a medical record HTTP handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// RecordRoutes mounts the medical record endpoints on a chi router.
func (h *Handler) RecordRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateRecord)
	r.Get("/", h.ListRecords)
	r.Get("/patient/{patientID}", h.ListRecordsByPatient)
	r.Get("/{id}", h.GetRecord)
	return r
}

// PrescriptionRoutes mounts the prescription endpoints on a chi router.
func (h *Handler) PrescriptionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreatePrescription)
	r.Get("/", h.ListPrescriptions)
	r.Get("/medical-record/{recordID}", h.ListPrescriptionsByRecord)
	r.Get("/{id}", h.GetPrescription)
	return r
}

type recordRequest struct {
	PatientID int64  `json:"patient_id"`
	DoctorID  *int64 `json:"doctor_id"`
	Summary   string `json:"summary"`
}

// CreateRecord adds a clinical note for a patient.
// POST /medical-records
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PatientID == 0 {
		writeError(w, http.StatusBadRequest, "patient_id is required")
		return
	}

	rec := &MedicalRecord{PatientID: req.PatientID, DoctorID: req.DoctorID, Summary: req.Summary}
	if err := h.store.CreateRecord(r.Context(), rec); err != nil {
		h.logger.Error("failed to create medical record", "patient_id", req.PatientID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// ListRecords returns medical records with skip/limit pagination.
// GET /medical-records?skip=0&limit=100
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	recs, err := h.store.ListRecords(r.Context(), limit, skip)
	if err != nil {
		h.logger.Error("failed to list medical records", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// GetRecord returns a single medical record.
// GET /medical-records/{id}
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	rec, err := h.store.GetRecord(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get medical record", "record_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Historial médico no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListRecordsByPatient returns a patient's medical records.
// GET /medical-records/patient/{patientID}
func (h *Handler) ListRecordsByPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "patientID")
	if !ok {
		return
	}
	recs, err := h.store.ListRecordsByPatient(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list medical records by patient", "patient_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

type prescriptionRequest struct {
	MedicalRecordID int64  `json:"medical_record_id"`
	Medication      string `json:"medication"`
	Dosage          string `json:"dosage"`
	Frequency       string `json:"frequency"`
	Instructions    string `json:"instructions"`
}

// CreatePrescription adds a prescription under a medical record.
// POST /prescriptions
func (h *Handler) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	var req prescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MedicalRecordID == 0 || req.Medication == "" {
		writeError(w, http.StatusBadRequest, "medical_record_id and medication are required")
		return
	}

	p := &Prescription{
		MedicalRecordID: req.MedicalRecordID,
		Medication:      req.Medication,
		Dosage:          req.Dosage,
		Frequency:       req.Frequency,
		Instructions:    req.Instructions,
	}
	if err := h.store.CreatePrescription(r.Context(), p); err != nil {
		h.logger.Error("failed to create prescription", "medical_record_id", req.MedicalRecordID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListPrescriptions returns prescriptions with skip/limit pagination.
// GET /prescriptions?skip=0&limit=100
func (h *Handler) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	ps, err := h.store.ListPrescriptions(r.Context(), limit, skip)
	if err != nil {
		h.logger.Error("failed to list prescriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// GetPrescription returns a single prescription.
// GET /prescriptions/{id}
func (h *Handler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.store.GetPrescription(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get prescription", "prescription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "Receta no encontrada")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListPrescriptionsByRecord returns all prescriptions under a medical record.
// GET /prescriptions/medical-record/{recordID}
func (h *Handler) ListPrescriptionsByRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "recordID")
	if !ok {
		return
	}
	ps, err := h.store.ListPrescriptionsByRecord(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list prescriptions by record", "medical_record_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, ps)
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
