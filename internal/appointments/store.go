package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const appointmentColumns = `id, patient_id, doctor_id, start_at, end_at, status, attended, COALESCE(notes, ''), created_at, updated_at`

// Store provides persistence for appointments.
type Store struct {
	db DB
}

// NewStore creates an appointment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts an appointment and fills in the generated id and timestamps.
func (s *Store) Create(ctx context.Context, a *Appointment) error {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, start_at, end_at, status, attended, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.DoctorID, a.StartAt, a.EndAt, string(a.Status), a.Attended, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("appointments: create: %w", err)
	}
	return nil
}

// HasConflict reports whether the doctor already has a non-cancelled
// appointment overlapping [start, end). Half-open semantics: a slot ending
// exactly at start does not conflict.
func (s *Store) HasConflict(ctx context.Context, doctorID int64, start, end time.Time) (bool, error) {
	var conflict bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			  AND status <> 'CANCELLED'
			  AND start_at < $3
			  AND $2 < end_at
		)`, doctorID, start, end).Scan(&conflict)
	if err != nil {
		return false, fmt.Errorf("appointments: conflict check: %w", err)
	}
	return conflict, nil
}

// GetByID returns an appointment or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get by id: %w", err)
	}
	return a, nil
}

// GetDetail returns an appointment joined with its patient and doctor, or nil
// when it does not exist. The doctor's first specialty (by id) is included
// when one is assigned.
func (s *Store) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	var status string
	err := s.db.QueryRow(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.start_at, a.end_at, a.status, a.attended,
		       COALESCE(a.notes, ''), a.created_at, a.updated_at,
		       p.first_name, p.last_name, COALESCE(p.email, ''),
		       d.first_name, d.last_name,
		       COALESCE((
		           SELECT s.name FROM specialties s
		           JOIN doctor_specialties ds ON ds.specialty_id = s.id
		           WHERE ds.doctor_id = d.id
		           ORDER BY s.id LIMIT 1
		       ), '')
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors d ON d.id = a.doctor_id
		WHERE a.id = $1`, id).Scan(
		&d.ID, &d.PatientID, &d.DoctorID, &d.StartAt, &d.EndAt, &status, &d.Attended,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt,
		&d.PatientFirstName, &d.PatientLastName, &d.PatientEmail,
		&d.DoctorFirstName, &d.DoctorLastName,
		&d.DoctorSpecialty,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: get detail: %w", err)
	}
	d.Status = Status(status)
	return &d, nil
}

// List returns appointments ordered by start time.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		ORDER BY start_at
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByDoctor returns all appointments for a doctor ordered by start time.
func (s *Store) ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE doctor_id = $1
		ORDER BY start_at`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by doctor: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListByPatient returns all appointments for a patient ordered by start time.
func (s *Store) ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_at`, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListStartingBetween returns appointments whose start falls within [from, to],
// used by the reminder generation pass.
func (s *Store) ListStartingBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE start_at >= $1 AND start_at <= $2
		ORDER BY start_at`, from, to)
	if err != nil {
		return nil, fmt.Errorf("appointments: list starting between: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// UpdateStatus sets the status unconditionally and bumps updated_at. Returns
// nil when the appointment does not exist.
func (s *Store) UpdateStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING `+appointmentColumns, string(status), id)
	a, err := scanAppointment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: update status: %w", err)
	}
	return a, nil
}

// Delete removes an appointment. Reminder rows cascade at the schema level.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("appointments: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.StartAt, &a.EndAt,
		&status, &a.Attended, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}
