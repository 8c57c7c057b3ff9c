package patients

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var patientCols = []string{"id", "first_name", "last_name", "birth_date", "gender", "email", "phone", "address", "created_at", "updated_at"}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func TestCreateStoresEmptyOptionalsAsNull(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO patients").
		WithArgs("Ana", "García", (*time.Time)(nil), nil, "ana@example.com", nil, nil).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(4), now, now))

	p := &Patient{FirstName: "Ana", LastName: "García", Email: "ana@example.com"}
	require.NoError(t, store.Create(context.Background(), p))

	assert.Equal(t, int64(4), p.ID)
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, first_name").
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows(patientCols))

	p, err := store.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReturnsUpdatedRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := pgxmock.NewRows(patientCols).
		AddRow(int64(4), "Ana", "García", (*time.Time)(nil), "", "ana@nuevo.com", "", "", now, now)
	mock.ExpectQuery("UPDATE patients").
		WithArgs("Ana", "García", (*time.Time)(nil), nil, "ana@nuevo.com", nil, nil, int64(4)).
		WillReturnRows(rows)

	updated, err := store.Update(context.Background(), &Patient{ID: 4, FirstName: "Ana", LastName: "García", Email: "ana@nuevo.com"})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "ana@nuevo.com", updated.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM patients").
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM patients").
		WithArgs(int64(5)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	deleted, err := store.Delete(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
