package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const recordColumns = `id, patient_id, doctor_id, record_date, COALESCE(summary, '')`
const prescriptionColumns = `id, medical_record_id, medication, COALESCE(dosage, ''), COALESCE(frequency, ''), COALESCE(instructions, ''), issued_at`

// Store provides persistence for medical records and prescriptions.
type Store struct {
	db DB
}

// NewStore creates a medical record store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// CreateRecord inserts a medical record and fills in the generated id and
// record date.
func (s *Store) CreateRecord(ctx context.Context, rec *MedicalRecord) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO medical_records (patient_id, doctor_id, summary)
		VALUES ($1, $2, $3)
		RETURNING id, record_date`,
		rec.PatientID, rec.DoctorID, nullable(rec.Summary),
	).Scan(&rec.ID, &rec.RecordDate)
	if err != nil {
		return fmt.Errorf("records: create: %w", err)
	}
	return nil
}

// GetRecord returns a medical record or nil when it does not exist.
func (s *Store) GetRecord(ctx context.Context, id int64) (*MedicalRecord, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM medical_records WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: get: %w", err)
	}
	return rec, nil
}

// ListRecords returns medical records ordered by date, newest first.
func (s *Store) ListRecords(ctx context.Context, limit, offset int) ([]MedicalRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM medical_records
		ORDER BY record_date DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("records: list: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListRecordsByPatient returns a patient's medical records, newest first.
func (s *Store) ListRecordsByPatient(ctx context.Context, patientID int64) ([]MedicalRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY record_date DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("records: list by patient: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CreatePrescription inserts a prescription and fills in the generated id and
// issue date.
func (s *Store) CreatePrescription(ctx context.Context, p *Prescription) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO prescriptions (medical_record_id, medication, dosage, frequency, instructions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, issued_at`,
		p.MedicalRecordID, p.Medication, nullable(p.Dosage), nullable(p.Frequency), nullable(p.Instructions),
	).Scan(&p.ID, &p.IssuedAt)
	if err != nil {
		return fmt.Errorf("records: create prescription: %w", err)
	}
	return nil
}

// GetPrescription returns a prescription or nil when it does not exist.
func (s *Store) GetPrescription(ctx context.Context, id int64) (*Prescription, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions WHERE id = $1`, id)
	p, err := scanPrescription(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: get prescription: %w", err)
	}
	return p, nil
}

// ListPrescriptions returns prescriptions ordered by id.
func (s *Store) ListPrescriptions(ctx context.Context, limit, offset int) ([]Prescription, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("records: list prescriptions: %w", err)
	}
	defer rows.Close()
	return scanPrescriptions(rows)
}

// ListPrescriptionsByRecord returns all prescriptions under a medical record.
func (s *Store) ListPrescriptionsByRecord(ctx context.Context, recordID int64) ([]Prescription, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+prescriptionColumns+`
		FROM prescriptions
		WHERE medical_record_id = $1
		ORDER BY id`, recordID)
	if err != nil {
		return nil, fmt.Errorf("records: list prescriptions by record: %w", err)
	}
	defer rows.Close()
	return scanPrescriptions(rows)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var rec MedicalRecord
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.RecordDate, &rec.Summary)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRecords(rows pgx.Rows) ([]MedicalRecord, error) {
	result := []MedicalRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("records: scan: %w", err)
		}
		result = append(result, *rec)
	}
	return result, rows.Err()
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.MedicalRecordID, &p.Medication, &p.Dosage, &p.Frequency, &p.Instructions, &p.IssuedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPrescriptions(rows pgx.Rows) ([]Prescription, error) {
	result := []Prescription{}
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("records: scan prescription: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}
