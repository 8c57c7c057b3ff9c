package reminders

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

const reminderColumns = `id, appointment_id, channel, message, send_at, sent, created_at`

// Store provides persistence for reminders.
type Store struct {
	db DB
}

// NewStore creates a reminder store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts a reminder and fills in the generated id and creation time.
func (s *Store) Create(ctx context.Context, r *Reminder) error {
	if r.Channel == "" {
		r.Channel = ChannelEmail
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO reminders (appointment_id, channel, message, send_at, sent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		r.AppointmentID, r.Channel, r.Message, r.SendAt, r.Sent,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("reminders: create: %w", err)
	}
	return nil
}

// ExistsForAppointment reports whether the appointment already has a reminder
// on the given channel. The generation pass uses this to stay idempotent.
func (s *Store) ExistsForAppointment(ctx context.Context, appointmentID int64, channel string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reminders
			WHERE appointment_id = $1 AND channel = $2
		)`, appointmentID, channel).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("reminders: exists for appointment: %w", err)
	}
	return exists, nil
}

// ListDue returns all unsent reminders whose send_at is on or before asOf.
func (s *Store) ListDue(ctx context.Context, asOf time.Time) ([]Reminder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE sent = false AND send_at <= $1
		ORDER BY send_at`, asOf)
	if err != nil {
		return nil, fmt.Errorf("reminders: list due: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// MarkSent flips a reminder to sent. Only an unsent row qualifies, so a
// concurrent dispatch pass cannot double-deliver.
func (s *Store) MarkSent(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE reminders SET sent = true
		WHERE id = $1 AND sent = false`, id)
	if err != nil {
		return fmt.Errorf("reminders: mark sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reminders: mark sent: no unsent reminder with id %d", id)
	}
	return nil
}

// GetByID returns a reminder or nil when it does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Reminder, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders WHERE id = $1`, id)
	r, err := scanReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reminders: get by id: %w", err)
	}
	return r, nil
}

// List returns reminders ordered by send time.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Reminder, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		ORDER BY send_at
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("reminders: list: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

// ListByAppointment returns all reminders for an appointment.
func (s *Store) ListByAppointment(ctx context.Context, appointmentID int64) ([]Reminder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE appointment_id = $1
		ORDER BY send_at`, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("reminders: list by appointment: %w", err)
	}
	defer rows.Close()
	return scanReminders(rows)
}

func scanReminder(row pgx.Row) (*Reminder, error) {
	var r Reminder
	err := row.Scan(&r.ID, &r.AppointmentID, &r.Channel, &r.Message, &r.SendAt, &r.Sent, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanReminders(rows pgx.Rows) ([]Reminder, error) {
	var result []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("reminders: scan: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}
