package reports

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hospitaldao/appointments-api/pkg/logging"
)

const dateLayout = "2006-01-02"

// Handler exposes the reporting aggregates over HTTP, backed by the short-TTL
// Redis cache when one is configured.
type Handler struct {
	store    *Store
	cache    *Cache
	logger   *logging.Logger
	pageSize int
}

// NewHandler creates a report HTTP handler. cache may be nil.
func NewHandler(store *Store, cache *Cache, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, cache: cache, logger: logger, pageSize: 10}
}

// WithPageSize overrides the default page size used when the request does not
// specify one.
func (h *Handler) WithPageSize(n int) *Handler {
	if n > 0 {
		h.pageSize = n
	}
	return h
}

// Routes mounts the report endpoints on a chi router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/appointments-by-doctor", h.AppointmentsByDoctor)
	r.Get("/appointments-by-specialty", h.AppointmentsBySpecialty)
	r.Get("/patients-attended", h.PatientsAttended)
	r.Get("/status-breakdown", h.StatusBreakdown)
	return r
}

// AppointmentsByDoctor returns per-doctor counts and rows.
// GET /reports/appointments-by-doctor?doctor_id=&start_date=&end_date=
func (h *Handler) AppointmentsByDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := int64(queryInt(r, "doctor_id", 0))
	start, end, err := dateRange(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("reports:by-doctor:%d:%s:%s", doctorID, dateKey(start), dateKey(end))
	var cached []DoctorReport
	if h.cache.Get(r.Context(), key, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	reports, err := h.store.AppointmentsByDoctor(r.Context(), doctorID, start, end)
	if err != nil {
		h.logger.Error("failed to build appointments-by-doctor report", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(r.Context(), key, reports)
	writeJSON(w, http.StatusOK, reports)
}

// AppointmentsBySpecialty returns per-specialty counts.
// GET /reports/appointments-by-specialty?start_date=&end_date=
func (h *Handler) AppointmentsBySpecialty(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("reports:by-specialty:%s:%s", dateKey(start), dateKey(end))
	var cached []SpecialtyReport
	if h.cache.Get(r.Context(), key, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	reports, err := h.store.AppointmentsBySpecialty(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to build appointments-by-specialty report", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(r.Context(), key, reports)
	writeJSON(w, http.StatusOK, reports)
}

// PatientsAttended pages through patients with COMPLETED appointments. Both
// dates are required; the end date is inclusive through 23:59:59.
// GET /reports/patients-attended?start_date=&end_date=&page=1&page_size=10
func (h *Handler) PatientsAttended(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r, true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	endOfDay := end.Add(24*time.Hour - time.Second)
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", h.pageSize)

	key := fmt.Sprintf("reports:attended:%s:%s:%d:%d", dateKey(start), dateKey(end), page, pageSize)
	var cached AttendedPage
	if h.cache.Get(r.Context(), key, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result, err := h.store.PatientsAttended(r.Context(), *start, endOfDay, page, pageSize)
	if err != nil {
		h.logger.Error("failed to build patients-attended report", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(r.Context(), key, result)
	writeJSON(w, http.StatusOK, result)
}

// StatusBreakdown returns appointment counts per status. The original system
// rendered this as a server-side PNG bar chart; clients draw their own from
// the counts.
// GET /reports/status-breakdown?start_date=&end_date=
func (h *Handler) StatusBreakdown(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r, false)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("reports:status:%s:%s", dateKey(start), dateKey(end))
	var cached StatusBreakdown
	if h.cache.Get(r.Context(), key, &cached) {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	breakdown, err := h.store.StatusCounts(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to build status-breakdown report", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.cache.Set(r.Context(), key, breakdown)
	writeJSON(w, http.StatusOK, breakdown)
}

// dateRange parses optional (or required) start_date/end_date query params.
func dateRange(r *http.Request, required bool) (start, end *time.Time, err error) {
	if v := r.URL.Query().Get("start_date"); v != "" {
		t, perr := time.Parse(dateLayout, v)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid start_date, expected YYYY-MM-DD")
		}
		start = &t
	} else if required {
		return nil, nil, fmt.Errorf("start_date is required")
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, perr := time.Parse(dateLayout, v)
		if perr != nil {
			return nil, nil, fmt.Errorf("invalid end_date, expected YYYY-MM-DD")
		}
		end = &t
	} else if required {
		return nil, nil, fmt.Errorf("end_date is required")
	}
	return start, end, nil
}

func dateKey(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
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
