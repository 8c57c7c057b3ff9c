package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SpecialtyStore provides persistence for the specialty catalog.
type SpecialtyStore struct {
	db DB
}

// NewSpecialtyStore creates a specialty store.
func NewSpecialtyStore(db DB) *SpecialtyStore {
	return &SpecialtyStore{db: db}
}

// Create inserts a specialty and fills in the generated id.
func (s *SpecialtyStore) Create(ctx context.Context, sp *Specialty) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO specialties (name, description)
		VALUES ($1, $2)
		RETURNING id`,
		sp.Name, nullable(sp.Description),
	).Scan(&sp.ID)
	if err != nil {
		return fmt.Errorf("doctors: create specialty: %w", err)
	}
	return nil
}

// GetByID returns a specialty or nil when it does not exist.
func (s *SpecialtyStore) GetByID(ctx context.Context, id int64) (*Specialty, error) {
	var sp Specialty
	err := s.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, '')
		FROM specialties WHERE id = $1`, id).Scan(&sp.ID, &sp.Name, &sp.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get specialty: %w", err)
	}
	return &sp, nil
}

// List returns specialties ordered by id.
func (s *SpecialtyStore) List(ctx context.Context, limit, offset int) ([]Specialty, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(description, '')
		FROM specialties
		ORDER BY id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("doctors: list specialties: %w", err)
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

// Update overwrites a specialty. Returns nil when it does not exist.
func (s *SpecialtyStore) Update(ctx context.Context, sp *Specialty) (*Specialty, error) {
	var updated Specialty
	err := s.db.QueryRow(ctx, `
		UPDATE specialties
		SET name = $1, description = $2
		WHERE id = $3
		RETURNING id, name, COALESCE(description, '')`,
		sp.Name, nullable(sp.Description), sp.ID).Scan(&updated.ID, &updated.Name, &updated.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: update specialty: %w", err)
	}
	return &updated, nil
}

// Delete removes a specialty.
func (s *SpecialtyStore) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM specialties WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("doctors: delete specialty: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
