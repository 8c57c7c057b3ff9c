package reports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute, nil), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	payload := []SpecialtyReport{{SpecialtyID: 1, SpecialtyName: "Cardiología", AppointmentCount: 4}}
	cache.Set(ctx, "reports:test", payload)

	var got []SpecialtyReport
	require.True(t, cache.Get(ctx, "reports:test", &got))
	assert.Equal(t, payload, got)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got []SpecialtyReport
	assert.False(t, cache.Get(context.Background(), "reports:missing", &got))
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "reports:test", StatusBreakdown{"SCHEDULED": 1})
	mr.FastForward(2 * time.Minute)

	var got StatusBreakdown
	assert.False(t, cache.Get(ctx, "reports:test", &got))
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	cache.Set(ctx, "k", "v")
	var got string
	assert.False(t, cache.Get(ctx, "k", &got))
}

func TestStatusBreakdownServedFromCache(t *testing.T) {
	cache, _ := newTestCache(t)
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	// First request hits the store, second is served from cache (no second
	// query expectation).
	mock.ExpectQuery("SELECT status, COUNT").
		WithArgs((*time.Time)(nil), (*time.Time)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).AddRow("SCHEDULED", 2))

	srv := httptest.NewServer(NewHandler(NewStore(mock), cache, nil).Routes())
	t.Cleanup(srv.Close)

	for i := 0; i < 2; i++ {
		resp, err := http.Get(srv.URL + "/status-breakdown")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientsAttendedRequiresDates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	srv := httptest.NewServer(NewHandler(NewStore(mock), nil, nil).Routes())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/patients-attended")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
