package doctors

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var doctorCols = []string{"id", "first_name", "last_name", "license_number", "email", "phone", "address", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func TestCreateAssignsSpecialties(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO doctors").
		WithArgs("Luis", "Pérez", "MP-1234", nil, nil, nil).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(2), now, now))
	mock.ExpectExec("INSERT INTO doctor_specialties").
		WithArgs(int64(2), int64(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO doctor_specialties").
		WithArgs(int64(2), int64(3)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT s.id, s.name").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}).
			AddRow(int64(1), "Cardiología", "").
			AddRow(int64(3), "Pediatría", ""))

	d := &Doctor{FirstName: "Luis", LastName: "Pérez", LicenseNumber: "MP-1234"}
	require.NoError(t, store.Create(context.Background(), d, []int64{1, 3}))

	assert.Equal(t, int64(2), d.ID)
	require.Len(t, d.Specialties, 2)
	assert.Equal(t, "Cardiología", d.Specialties[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLicenseExists(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("MP-1234", int64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := store.LicenseExists(context.Background(), "MP-1234", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, first_name").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(doctorCols))

	d, err := store.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReplacesSpecialties(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE doctors").
		WithArgs("Luis", "Pérez", "MP-1234", nil, nil, nil, int64(2)).
		WillReturnRows(pgxmock.NewRows(doctorCols).
			AddRow(int64(2), "Luis", "Pérez", "MP-1234", "", "", "", now, now))
	mock.ExpectExec("DELETE FROM doctor_specialties").
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO doctor_specialties").
		WithArgs(int64(2), int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("SELECT s.id, s.name").
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}).
			AddRow(int64(5), "Dermatología", ""))

	d := &Doctor{ID: 2, FirstName: "Luis", LastName: "Pérez", LicenseNumber: "MP-1234"}
	updated, err := store.Update(context.Background(), d, []int64{5})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Len(t, updated.Specialties, 1)
	assert.Equal(t, "Dermatología", updated.Specialties[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteDoctor(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM doctors").
		WithArgs(int64(2)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	deleted, err := store.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkingHourCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	store := NewWorkingHourStore(mock)

	mock.ExpectQuery("INSERT INTO working_hours").
		WithArgs(int64(2), "Lunes", "09:00", "13:00").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(8)))

	wh := &WorkingHour{DoctorID: 2, Weekday: "Lunes", StartTime: "09:00", EndTime: "13:00"}
	require.NoError(t, store.Create(context.Background(), wh))
	assert.Equal(t, int64(8), wh.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpecialtyUpdateMissingReturnsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	store := NewSpecialtyStore(mock)

	mock.ExpectQuery("UPDATE specialties").
		WithArgs("Cardiología", nil, int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description"}))

	sp, err := store.Update(context.Background(), &Specialty{ID: 404, Name: "Cardiología"})
	require.NoError(t, err)
	assert.Nil(t, sp)
	assert.NoError(t, mock.ExpectationsWereMet())
}
