package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hospitaldao/appointments-api/internal/appointments"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store runs the reporting aggregates against the appointments schema.
type Store struct {
	db DB
}

// NewStore creates a report store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// AppointmentsByDoctor returns per-doctor appointment counts plus the
// appointment rows behind each count. doctorID 0 means all doctors; nil
// date bounds are open.
func (s *Store) AppointmentsByDoctor(ctx context.Context, doctorID int64, start, end *time.Time) ([]DoctorReport, error) {
	rows, err := s.db.Query(ctx, `
		SELECT d.id, d.first_name || ' ' || d.last_name, COUNT(a.id)
		FROM doctors d
		JOIN appointments a ON a.doctor_id = d.id
		WHERE ($1 = 0 OR d.id = $1)
		  AND ($2::timestamptz IS NULL OR a.start_at >= $2)
		  AND ($3::timestamptz IS NULL OR a.start_at <= $3)
		GROUP BY d.id, d.first_name, d.last_name
		ORDER BY d.id`, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("reports: appointments by doctor: %w", err)
	}
	defer rows.Close()

	reports := []DoctorReport{}
	for rows.Next() {
		var r DoctorReport
		if err := rows.Scan(&r.DoctorID, &r.DoctorName, &r.AppointmentCount); err != nil {
			return nil, fmt.Errorf("reports: scan doctor report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: appointments by doctor: %w", err)
	}

	for i := range reports {
		appts, err := s.appointmentsForDoctor(ctx, reports[i].DoctorID, start, end)
		if err != nil {
			return nil, err
		}
		reports[i].Appointments = appts
	}
	return reports, nil
}

func (s *Store) appointmentsForDoctor(ctx context.Context, doctorID int64, start, end *time.Time) ([]AppointmentSummary, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.patient_id,
		       COALESCE(p.first_name || ' ' || p.last_name, 'Desconocido'),
		       a.start_at, a.end_at, a.status, a.attended
		FROM appointments a
		LEFT JOIN patients p ON p.id = a.patient_id
		WHERE a.doctor_id = $1
		  AND ($2::timestamptz IS NULL OR a.start_at >= $2)
		  AND ($3::timestamptz IS NULL OR a.start_at <= $3)
		ORDER BY a.start_at`, doctorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("reports: appointments for doctor: %w", err)
	}
	defer rows.Close()

	appts := []AppointmentSummary{}
	for rows.Next() {
		var a AppointmentSummary
		if err := rows.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.StartAt, &a.EndAt, &a.Status, &a.Attended); err != nil {
			return nil, fmt.Errorf("reports: scan appointment summary: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// AppointmentsBySpecialty counts appointments against each specialty through
// the doctors assigned to it.
func (s *Store) AppointmentsBySpecialty(ctx context.Context, start, end *time.Time) ([]SpecialtyReport, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.name, COUNT(a.id)
		FROM specialties s
		JOIN doctor_specialties ds ON ds.specialty_id = s.id
		JOIN doctors d ON d.id = ds.doctor_id
		JOIN appointments a ON a.doctor_id = d.id
		WHERE ($1::timestamptz IS NULL OR a.start_at >= $1)
		  AND ($2::timestamptz IS NULL OR a.start_at <= $2)
		GROUP BY s.id, s.name
		ORDER BY s.id`, start, end)
	if err != nil {
		return nil, fmt.Errorf("reports: appointments by specialty: %w", err)
	}
	defer rows.Close()

	reports := []SpecialtyReport{}
	for rows.Next() {
		var r SpecialtyReport
		if err := rows.Scan(&r.SpecialtyID, &r.SpecialtyName, &r.AppointmentCount); err != nil {
			return nil, fmt.Errorf("reports: scan specialty report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// PatientsAttended pages through patients with COMPLETED appointments inside
// [start, end]. Callers pass end already extended to the end of its day.
func (s *Store) PatientsAttended(ctx context.Context, start, end time.Time, page, pageSize int) (*AttendedPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT p.id
			FROM patients p
			JOIN appointments a ON a.patient_id = p.id
			WHERE a.status = 'COMPLETED'
			  AND a.start_at >= $1 AND a.start_at <= $2
			GROUP BY p.id
		) attended`, start, end).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("reports: patients attended count: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.first_name || ' ' || p.last_name, COUNT(a.id), MAX(a.start_at)
		FROM patients p
		JOIN appointments a ON a.patient_id = p.id
		WHERE a.status = 'COMPLETED'
		  AND a.start_at >= $1 AND a.start_at <= $2
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY p.id
		LIMIT $3 OFFSET $4`, start, end, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("reports: patients attended: %w", err)
	}
	defer rows.Close()

	data := []AttendedPatient{}
	for rows.Next() {
		var p AttendedPatient
		if err := rows.Scan(&p.PatientID, &p.PatientName, &p.AppointmentCount, &p.LastAppointment); err != nil {
			return nil, fmt.Errorf("reports: scan attended patient: %w", err)
		}
		data = append(data, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: patients attended: %w", err)
	}

	return &AttendedPage{
		Data:        data,
		CurrentPage: page,
		TotalPages:  (total + pageSize - 1) / pageSize,
	}, nil
}

// StatusCounts returns appointment counts per status, zero-filled for
// statuses with no rows.
func (s *Store) StatusCounts(ctx context.Context, start, end *time.Time) (StatusBreakdown, error) {
	rows, err := s.db.Query(ctx, `
		SELECT status, COUNT(*)
		FROM appointments
		WHERE ($1::timestamptz IS NULL OR start_at >= $1)
		  AND ($2::timestamptz IS NULL OR start_at <= $2)
		GROUP BY status`, start, end)
	if err != nil {
		return nil, fmt.Errorf("reports: status counts: %w", err)
	}
	defer rows.Close()

	breakdown := StatusBreakdown{
		string(appointments.StatusScheduled): 0,
		string(appointments.StatusConfirmed): 0,
		string(appointments.StatusCancelled): 0,
		string(appointments.StatusCompleted): 0,
		string(appointments.StatusNoShow):    0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("reports: scan status count: %w", err)
		}
		breakdown[status] = count
	}
	return breakdown, rows.Err()
}
