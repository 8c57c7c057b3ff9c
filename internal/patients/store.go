package patients

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

const patientColumns = `id, first_name, last_name, birth_date, COALESCE(gender, ''), COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), created_at, updated_at`

// Store provides persistence for patients.
type Store struct {
	db DB
}

// NewStore creates a patient store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts a patient and fills in the generated id and timestamps.
func (s *Store) Create(ctx context.Context, p *Patient) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, birth_date, gender, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		p.FirstName, p.LastName, p.BirthDate, nullable(p.Gender), nullable(p.Email), nullable(p.Phone), nullable(p.Address),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("patients: create: %w", err)
	}
	return nil
}

// GetByID returns a patient or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Patient, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients WHERE id = $1`, id)
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get by id: %w", err)
	}
	return p, nil
}

// List returns patients ordered by id.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Patient, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("patients: list: %w", err)
	}
	defer rows.Close()
	return scanPatients(rows)
}

// Update overwrites the patient's mutable fields. Returns nil when the
// patient does not exist.
func (s *Store) Update(ctx context.Context, p *Patient) (*Patient, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE patients
		SET first_name = $1, last_name = $2, birth_date = $3, gender = $4,
		    email = $5, phone = $6, address = $7, updated_at = now()
		WHERE id = $8
		RETURNING `+patientColumns,
		p.FirstName, p.LastName, p.BirthDate, nullable(p.Gender), nullable(p.Email), nullable(p.Phone), nullable(p.Address), p.ID)
	updated, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("patients: update: %w", err)
	}
	return updated, nil
}

// Delete removes a patient.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("patients: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// nullable maps "" to NULL so empty optional fields don't store empty strings.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.BirthDate,
		&p.Gender, &p.Email, &p.Phone, &p.Address,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatients(rows pgx.Rows) ([]Patient, error) {
	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("patients: scan: %w", err)
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}
