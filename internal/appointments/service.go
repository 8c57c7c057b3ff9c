package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hospitaldao/appointments-api/internal/events"
	"github.com/hospitaldao/appointments-api/internal/observability/metrics"
	"github.com/hospitaldao/appointments-api/pkg/logging"
)

var tracer = otel.Tracer("hospitaldao.internal.appointments")

var (
	// ErrSchedulingConflict means the doctor already has a non-cancelled
	// appointment overlapping the requested interval.
	ErrSchedulingConflict = errors.New("appointments: doctor already has an appointment in that interval")
	// ErrNotFound means the referenced appointment does not exist.
	ErrNotFound = errors.New("appointments: not found")
	// ErrInvalidInterval means start is not strictly before end.
	ErrInvalidInterval = errors.New("appointments: start must be before end")
	// ErrInvalidStatus means the status is not one of the enumerated values.
	ErrInvalidStatus = errors.New("appointments: invalid status")
)

// CreateInput holds the fields accepted when booking an appointment.
type CreateInput struct {
	PatientID int64
	DoctorID  int64
	StartAt   time.Time
	EndAt     time.Time
	Notes     string
}

// Service implements the appointment use cases: conflict-checked creation,
// unconditional status updates and deletion.
type Service struct {
	store   *Store
	bus     *events.Bus
	metrics *metrics.AppointmentMetrics
	logger  *logging.Logger
}

// NewService constructs an appointment service.
func NewService(store *Store, bus *events.Bus, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, bus: bus, logger: logger}
}

// WithMetrics attaches booking counters. Safe to skip; all observations are
// nil-tolerant.
func (s *Service) WithMetrics(m *metrics.AppointmentMetrics) *Service {
	s.metrics = m
	return s
}

// Create books an appointment after checking the doctor's calendar for
// overlaps. On success the persisted appointment is published on the bus as
// an appointment.created event; handler failures never fail the booking.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.create")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("appointments.doctor_id", in.DoctorID),
		attribute.Int64("appointments.patient_id", in.PatientID),
	)

	if !in.StartAt.Before(in.EndAt) {
		return nil, ErrInvalidInterval
	}

	conflict, err := s.store.HasConflict(ctx, in.DoctorID, in.StartAt, in.EndAt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if conflict {
		s.metrics.ObserveConflict()
		return nil, ErrSchedulingConflict
	}

	appt := &Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		StartAt:   in.StartAt,
		EndAt:     in.EndAt,
		Status:    StatusScheduled,
		Attended:  false,
		Notes:     in.Notes,
	}
	if err := s.store.Create(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveCreated()
	s.logger.Info("appointment created",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"patient_id", appt.PatientID,
		"start_at", appt.StartAt,
	)

	s.publishCreated(ctx, appt)
	return appt, nil
}

// publishCreated loads the full detail and fires the appointment.created
// event. The appointment is already committed, so failures here are logged
// and swallowed.
func (s *Service) publishCreated(ctx context.Context, appt *Appointment) {
	if s.bus == nil {
		return
	}
	detail, err := s.store.GetDetail(ctx, appt.ID)
	if err != nil || detail == nil {
		s.logger.Error("failed to load appointment detail for event", "appointment_id", appt.ID, "error", err)
		return
	}
	s.bus.Publish(ctx, events.AppointmentCreated, events.AppointmentCreatedV1{
		EventID:          uuid.NewString(),
		AppointmentID:    detail.ID,
		PatientID:        detail.PatientID,
		PatientFirstName: detail.PatientFirstName,
		PatientLastName:  detail.PatientLastName,
		PatientEmail:     detail.PatientEmail,
		DoctorID:         detail.DoctorID,
		DoctorFirstName:  detail.DoctorFirstName,
		DoctorLastName:   detail.DoctorLastName,
		DoctorSpecialty:  detail.DoctorSpecialty,
		StartAt:          detail.StartAt,
		EndAt:            detail.EndAt,
		Status:           string(detail.Status),
		CreatedAt:        detail.CreatedAt,
	})
}

// Get returns an appointment by id.
func (s *Service) Get(ctx context.Context, id int64) (*Appointment, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	return appt, nil
}

// List returns appointments with offset pagination.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Appointment, error) {
	return s.store.List(ctx, limit, offset)
}

// ListByDoctor returns a doctor's appointments.
func (s *Service) ListByDoctor(ctx context.Context, doctorID int64) ([]Appointment, error) {
	return s.store.ListByDoctor(ctx, doctorID)
}

// ListByPatient returns a patient's appointments.
func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	return s.store.ListByPatient(ctx, patientID)
}

// UpdateStatus sets the appointment status. Any enumerated status may be set
// from any other; there is no transition table.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	appt, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	s.logger.Info("appointment status updated", "appointment_id", id, "status", status)
	return appt, nil
}

// Delete removes an appointment and, via schema cascade, its reminders.
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Info("appointment deleted", "appointment_id", id)
	return nil
}
