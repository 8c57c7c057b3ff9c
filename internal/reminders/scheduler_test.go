package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitaldao/appointments-api/internal/appointments"
	"github.com/hospitaldao/appointments-api/internal/notify"
)

type fakeAppointments struct {
	upcoming []appointments.Appointment
	details  map[int64]*appointments.Detail
	listErr  error
}

func (f *fakeAppointments) ListStartingBetween(ctx context.Context, from, to time.Time) ([]appointments.Appointment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.upcoming, nil
}

func (f *fakeAppointments) GetDetail(ctx context.Context, id int64) (*appointments.Detail, error) {
	return f.details[id], nil
}

type fakeSender struct {
	sent    []notify.EmailMessage
	callErr error
}

func (f *fakeSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	if f.callErr != nil {
		return f.callErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

var testClock = time.Date(2025, 11, 10, 8, 0, 0, 0, time.UTC)

func newTestScheduler(t *testing.T, appts *fakeAppointments, sender *fakeSender) (*Scheduler, pgxmock.PgxPoolIface) {
	t.Helper()
	store, mock := newMockStore(t)
	s := NewScheduler(appts, store, sender, nil).
		WithClock(func() time.Time { return testClock })
	return s, mock
}

func TestGenerateOnceCreatesMissingReminders(t *testing.T) {
	start := testClock.Add(3 * time.Hour)
	appts := &fakeAppointments{upcoming: []appointments.Appointment{
		{ID: 1, StartAt: start, Status: appointments.StatusCancelled},
		{ID: 2, StartAt: start, Status: appointments.StatusScheduled},
		{ID: 3, StartAt: start.Add(time.Hour), Status: appointments.StatusConfirmed},
	}}
	s, mock := newTestScheduler(t, appts, &fakeSender{})

	// Appointment 2 already has a reminder; 3 gets one. The cancelled
	// appointment is never looked up.
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2), "email").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(3), "email").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO reminders").
		WithArgs(int64(3), "email", ReminderMessage(start.Add(time.Hour)), start, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), testClock))

	created, err := s.GenerateOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateOncePropagatesListError(t *testing.T) {
	appts := &fakeAppointments{listErr: errors.New("db down")}
	s, _ := newTestScheduler(t, appts, &fakeSender{})

	_, err := s.GenerateOnce(context.Background())
	assert.Error(t, err)
}

func dueRows(ids ...int64) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "appointment_id", "channel", "message", "send_at", "sent", "created_at"})
	for _, id := range ids {
		rows.AddRow(id, id+30, "email", "Tienes un turno el 2025-11-10 09:00", testClock.Add(-time.Minute), false, testClock)
	}
	return rows
}

func detailFor(id int64, email string) *appointments.Detail {
	d := &appointments.Detail{
		PatientFirstName: "Ana",
		PatientLastName:  "García",
		PatientEmail:     email,
		DoctorFirstName:  "Luis",
		DoctorLastName:   "Pérez",
	}
	d.ID = id
	d.StartAt = time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	return d
}

func TestDispatchOnceSendsAndMarksSent(t *testing.T) {
	sender := &fakeSender{}
	appts := &fakeAppointments{details: map[int64]*appointments.Detail{
		31: detailFor(31, "ana@example.com"),
	}}
	s, mock := newTestScheduler(t, appts, sender)

	mock.ExpectQuery("SELECT id, appointment_id").
		WithArgs(testClock).
		WillReturnRows(dueRows(1))
	mock.ExpectExec("UPDATE reminders").
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	sent, err := s.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Recordatorio de Turno Médico", msg.Subject)
	assert.Contains(t, msg.Body, "Hola Ana,")
	assert.Contains(t, msg.Body, "2025-11-10 09:00")
	assert.Contains(t, msg.Body, "Hospital DAO")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchLeavesReminderUnsentWhenSendFails(t *testing.T) {
	sender := &fakeSender{callErr: errors.New("smtp down")}
	appts := &fakeAppointments{details: map[int64]*appointments.Detail{
		31: detailFor(31, "ana@example.com"),
	}}
	s, mock := newTestScheduler(t, appts, sender)

	// No UPDATE expected: the row stays unsent and is retried next tick.
	mock.ExpectQuery("SELECT id, appointment_id").
		WithArgs(testClock).
		WillReturnRows(dueRows(1))

	sent, err := s.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchSkipsMissingAppointment(t *testing.T) {
	sender := &fakeSender{}
	appts := &fakeAppointments{details: map[int64]*appointments.Detail{}}
	s, mock := newTestScheduler(t, appts, sender)

	mock.ExpectQuery("SELECT id, appointment_id").
		WithArgs(testClock).
		WillReturnRows(dueRows(1))

	sent, err := s.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatchSkipsPatientWithoutEmail(t *testing.T) {
	sender := &fakeSender{}
	appts := &fakeAppointments{details: map[int64]*appointments.Detail{
		31: detailFor(31, ""),
	}}
	s, mock := newTestScheduler(t, appts, sender)

	// No UPDATE expected: the reminder is retried once the patient has an
	// email on file.
	mock.ExpectQuery("SELECT id, appointment_id").
		WithArgs(testClock).
		WillReturnRows(dueRows(1))

	sent, err := s.DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, sender.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	appts := &fakeAppointments{}
	s, mock := newTestScheduler(t, appts, &fakeSender{})
	s.WithIntervals(time.Hour, time.Hour)

	mock.ExpectQuery("SELECT id, appointment_id").
		WithArgs(testClock).
		WillReturnRows(dueRows())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
