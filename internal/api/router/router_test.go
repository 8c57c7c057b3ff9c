package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitaldao/appointments-api/internal/appointments"
	"github.com/hospitaldao/appointments-api/internal/doctors"
	"github.com/hospitaldao/appointments-api/internal/events"
	"github.com/hospitaldao/appointments-api/internal/patients"
	"github.com/hospitaldao/appointments-api/internal/records"
	"github.com/hospitaldao/appointments-api/internal/reminders"
	"github.com/hospitaldao/appointments-api/internal/reports"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	apptStore := appointments.NewStore(mock)
	apptService := appointments.NewService(apptStore, events.NewBus(nil), nil)

	reg := prometheus.NewRegistry()

	return New(&Config{
		AppointmentsHandler: appointments.NewHandler(apptService, nil),
		PatientsHandler:     patients.NewHandler(patients.NewStore(mock), nil),
		DoctorsHandler:      doctors.NewHandler(doctors.NewStore(mock), nil),
		SpecialtiesHandler:  doctors.NewSpecialtyHandler(doctors.NewSpecialtyStore(mock), nil),
		WorkingHoursHandler: doctors.NewWorkingHourHandler(doctors.NewWorkingHourStore(mock), nil),
		RecordsHandler:      records.NewHandler(records.NewStore(mock), nil),
		RemindersHandler:    reminders.NewHandler(reminders.NewStore(mock), nil),
		ReportsHandler:      reports.NewHandler(reports.NewStore(mock), nil, nil),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  []string{"https://clinic.example.com"},
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSHeaderOnAllowedOrigin(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://clinic.example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://clinic.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}
