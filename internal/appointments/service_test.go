package appointments

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitaldao/appointments-api/internal/events"
)

func detailRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "patient_id", "doctor_id", "start_at", "end_at", "status", "attended",
		"notes", "created_at", "updated_at",
		"p_first", "p_last", "p_email",
		"d_first", "d_last", "specialty",
	})
}

func TestCreateRejectsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	bus := events.NewBus(nil)
	var published bool
	bus.Subscribe(events.AppointmentCreated, events.HandlerFunc(func(ctx context.Context, payload any) error {
		published = true
		return nil
	}))
	svc := NewService(store, bus, nil)

	start := time.Date(2025, 11, 10, 9, 15, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2), start, end).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.Create(context.Background(), CreateInput{PatientID: 1, DoctorID: 2, StartAt: start, EndAt: end})

	assert.ErrorIs(t, err, ErrSchedulingConflict)
	assert.False(t, published, "no event should fire for a rejected booking")
	// No INSERT was expected: a conflict must leave the store untouched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsDegenerateInterval(t *testing.T) {
	store, _ := newMockStore(t)
	svc := NewService(store, nil, nil)

	start := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), CreateInput{PatientID: 1, DoctorID: 2, StartAt: start, EndAt: start})
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = svc.Create(context.Background(), CreateInput{PatientID: 1, DoctorID: 2, StartAt: start, EndAt: start.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCreatePersistsAndPublishes(t *testing.T) {
	store, mock := newMockStore(t)
	bus := events.NewBus(nil)
	var got events.AppointmentCreatedV1
	var count int
	bus.Subscribe(events.AppointmentCreated, events.HandlerFunc(func(ctx context.Context, payload any) error {
		got = payload.(events.AppointmentCreatedV1)
		count++
		return nil
	}))
	svc := NewService(store, bus, nil)

	start := time.Date(2025, 11, 10, 9, 30, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2), start, end).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(int64(1), int64(2), start, end, "SCHEDULED", false, "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(33), now, now))
	mock.ExpectQuery("SELECT a.id").
		WithArgs(int64(33)).
		WillReturnRows(detailRows().AddRow(
			int64(33), int64(1), int64(2), start, end, "SCHEDULED", false,
			"", now, now,
			"Ana", "García", "ana@example.com",
			"Luis", "Pérez", "Cardiología",
		))

	appt, err := svc.Create(context.Background(), CreateInput{PatientID: 1, DoctorID: 2, StartAt: start, EndAt: end})
	require.NoError(t, err)
	require.NotNil(t, appt)

	assert.Equal(t, int64(33), appt.ID)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.False(t, appt.Attended)

	assert.Equal(t, 1, count, "exactly one appointment.created event")
	assert.Equal(t, int64(33), got.AppointmentID)
	assert.Equal(t, "ana@example.com", got.PatientEmail)
	assert.Equal(t, "Cardiología", got.DoctorSpecialty)
	assert.Equal(t, start, got.StartAt)
	assert.NotEmpty(t, got.EventID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSucceedsWhenHandlerFails(t *testing.T) {
	store, mock := newMockStore(t)
	bus := events.NewBus(nil)
	bus.Subscribe(events.AppointmentCreated, events.HandlerFunc(func(ctx context.Context, payload any) error {
		panic("reminder handler exploded")
	}))
	svc := NewService(store, bus, nil)

	start := time.Date(2025, 11, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int64(2), start, end).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs(int64(1), int64(2), start, end, "SCHEDULED", false, "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(34), now, now))
	mock.ExpectQuery("SELECT a.id").
		WithArgs(int64(34)).
		WillReturnRows(detailRows().AddRow(
			int64(34), int64(1), int64(2), start, end, "SCHEDULED", false,
			"", now, now,
			"Ana", "García", "ana@example.com",
			"Luis", "Pérez", "",
		))

	appt, err := svc.Create(context.Background(), CreateInput{PatientID: 1, DoctorID: 2, StartAt: start, EndAt: end})
	require.NoError(t, err, "handler failure must not fail the booking")
	assert.Equal(t, int64(34), appt.ID)
}

func TestUpdateStatusValidation(t *testing.T) {
	store, _ := newMockStore(t)
	svc := NewService(store, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), 1, Status("LOST"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatusNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewService(store, nil, nil)

	mock.ExpectQuery("UPDATE appointments").
		WithArgs("CONFIRMED", int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "patient_id", "doctor_id", "start_at", "end_at", "status", "attended", "notes", "created_at", "updated_at"}))

	_, err := svc.UpdateStatus(context.Background(), 404, StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewService(store, nil, nil)

	mock.ExpectExec("DELETE FROM appointments").
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
