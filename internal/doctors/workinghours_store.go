package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const workingHourColumns = `id, doctor_id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')`

// WorkingHourStore provides persistence for doctor availability slots.
// Times cross the wire as "HH:MM" strings and are cast to TIME in SQL.
type WorkingHourStore struct {
	db DB
}

// NewWorkingHourStore creates a working hour store.
func NewWorkingHourStore(db DB) *WorkingHourStore {
	return &WorkingHourStore{db: db}
}

// Create inserts a working hour slot and fills in the generated id.
func (s *WorkingHourStore) Create(ctx context.Context, wh *WorkingHour) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO working_hours (doctor_id, weekday, start_time, end_time)
		VALUES ($1, $2, $3::time, $4::time)
		RETURNING id`,
		wh.DoctorID, wh.Weekday, wh.StartTime, wh.EndTime,
	).Scan(&wh.ID)
	if err != nil {
		return fmt.Errorf("doctors: create working hour: %w", err)
	}
	return nil
}

// GetByID returns a working hour slot or nil when it does not exist.
func (s *WorkingHourStore) GetByID(ctx context.Context, id int64) (*WorkingHour, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+workingHourColumns+`
		FROM working_hours WHERE id = $1`, id)
	wh, err := scanWorkingHour(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get working hour: %w", err)
	}
	return wh, nil
}

// List returns working hour slots ordered by doctor and start time.
func (s *WorkingHourStore) List(ctx context.Context, limit, offset int) ([]WorkingHour, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+workingHourColumns+`
		FROM working_hours
		ORDER BY doctor_id, start_time
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("doctors: list working hours: %w", err)
	}
	defer rows.Close()
	return scanWorkingHours(rows)
}

// ListByDoctor returns a doctor's working hour slots.
func (s *WorkingHourStore) ListByDoctor(ctx context.Context, doctorID int64) ([]WorkingHour, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+workingHourColumns+`
		FROM working_hours
		WHERE doctor_id = $1
		ORDER BY start_time`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctors: list working hours by doctor: %w", err)
	}
	defer rows.Close()
	return scanWorkingHours(rows)
}

// Update overwrites a working hour slot. Returns nil when it does not exist.
func (s *WorkingHourStore) Update(ctx context.Context, wh *WorkingHour) (*WorkingHour, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE working_hours
		SET doctor_id = $1, weekday = $2, start_time = $3::time, end_time = $4::time
		WHERE id = $5
		RETURNING `+workingHourColumns,
		wh.DoctorID, wh.Weekday, wh.StartTime, wh.EndTime, wh.ID)
	updated, err := scanWorkingHour(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: update working hour: %w", err)
	}
	return updated, nil
}

// Delete removes a working hour slot.
func (s *WorkingHourStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM working_hours WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("doctors: delete working hour: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanWorkingHour(row pgx.Row) (*WorkingHour, error) {
	var wh WorkingHour
	err := row.Scan(&wh.ID, &wh.DoctorID, &wh.Weekday, &wh.StartTime, &wh.EndTime)
	if err != nil {
		return nil, err
	}
	return &wh, nil
}

func scanWorkingHours(rows pgx.Rows) ([]WorkingHour, error) {
	result := []WorkingHour{}
	for rows.Next() {
		wh, err := scanWorkingHour(rows)
		if err != nil {
			return nil, fmt.Errorf("doctors: scan working hour: %w", err)
		}
		result = append(result, *wh)
	}
	return result, rows.Err()
}
