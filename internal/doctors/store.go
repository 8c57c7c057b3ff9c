package doctors

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

const doctorColumns = `id, first_name, last_name, license_number, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''), created_at, updated_at`

// Store provides persistence for doctors and their specialty assignments.
type Store struct {
	db DB
}

// NewStore creates a doctor store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts a doctor and assigns the given specialty ids. Unknown
// specialty ids are ignored, matching the assignment helper's behavior.
func (s *Store) Create(ctx context.Context, d *Doctor, specialtyIDs []int64) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO doctors (first_name, last_name, license_number, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		d.FirstName, d.LastName, d.LicenseNumber, nullable(d.Email), nullable(d.Phone), nullable(d.Address),
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("doctors: create: %w", err)
	}
	if len(specialtyIDs) > 0 {
		if err := s.assignSpecialties(ctx, d.ID, specialtyIDs); err != nil {
			return err
		}
	}
	d.Specialties, err = s.ListSpecialtiesForDoctor(ctx, d.ID)
	return err
}

// GetByID returns a doctor with specialties loaded, or nil when missing.
func (s *Store) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors WHERE id = $1`, id)
	d, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get by id: %w", err)
	}
	d.Specialties, err = s.ListSpecialtiesForDoctor(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// LicenseExists reports whether any doctor other than excludeID holds the
// license number.
func (s *Store) LicenseExists(ctx context.Context, license string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doctors WHERE license_number = $1 AND id <> $2
		)`, license, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("doctors: license exists: %w", err)
	}
	return exists, nil
}

// List returns doctors with specialties loaded, ordered by id.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Doctor, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()
	docs, err := scanDoctors(rows)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Specialties, err = s.ListSpecialtiesForDoctor(ctx, docs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// Update overwrites the doctor's fields and, when specialtyIDs is non-nil,
// replaces the specialty assignments. Returns nil when the doctor is missing.
func (s *Store) Update(ctx context.Context, d *Doctor, specialtyIDs []int64) (*Doctor, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE doctors
		SET first_name = $1, last_name = $2, license_number = $3,
		    email = $4, phone = $5, address = $6, updated_at = now()
		WHERE id = $7
		RETURNING `+doctorColumns,
		d.FirstName, d.LastName, d.LicenseNumber, nullable(d.Email), nullable(d.Phone), nullable(d.Address), d.ID)
	updated, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: update: %w", err)
	}
	if specialtyIDs != nil {
		if _, err := s.db.Exec(ctx, `DELETE FROM doctor_specialties WHERE doctor_id = $1`, d.ID); err != nil {
			return nil, fmt.Errorf("doctors: clear specialties: %w", err)
		}
		if err := s.assignSpecialties(ctx, d.ID, specialtyIDs); err != nil {
			return nil, err
		}
	}
	updated.Specialties, err = s.ListSpecialtiesForDoctor(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a doctor. Specialty assignments and working hours cascade
// at the schema level.
func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("doctors: delete: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListSpecialtiesForDoctor returns the doctor's specialties ordered by id.
func (s *Store) ListSpecialtiesForDoctor(ctx context.Context, doctorID int64) ([]Specialty, error) {
	rows, err := s.db.Query(ctx, `
		SELECT s.id, s.name, COALESCE(s.description, '')
		FROM specialties s
		JOIN doctor_specialties ds ON ds.specialty_id = s.id
		WHERE ds.doctor_id = $1
		ORDER BY s.id`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("doctors: list specialties for doctor: %w", err)
	}
	defer rows.Close()

	specs := []Specialty{}
	for rows.Next() {
		var sp Specialty
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Description); err != nil {
			return nil, fmt.Errorf("doctors: scan specialty: %w", err)
		}
		specs = append(specs, sp)
	}
	return specs, rows.Err()
}

func (s *Store) assignSpecialties(ctx context.Context, doctorID int64, specialtyIDs []int64) error {
	for _, specID := range specialtyIDs {
		_, err := s.db.Exec(ctx, `
			INSERT INTO doctor_specialties (doctor_id, specialty_id)
			SELECT $1, id FROM specialties WHERE id = $2`, doctorID, specID)
		if err != nil {
			return fmt.Errorf("doctors: assign specialty %d: %w", specID, err)
		}
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.FirstName, &d.LastName, &d.LicenseNumber,
		&d.Email, &d.Phone, &d.Address,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDoctors(rows pgx.Rows) ([]Doctor, error) {
	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("doctors: scan: %w", err)
		}
		result = append(result, *d)
	}
	return result, rows.Err()
}
