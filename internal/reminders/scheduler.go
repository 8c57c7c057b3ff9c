package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/hospitaldao/appointments-api/internal/appointments"
	"github.com/hospitaldao/appointments-api/internal/notify"
	"github.com/hospitaldao/appointments-api/internal/observability/metrics"
	"github.com/hospitaldao/appointments-api/pkg/logging"
)

const reminderSubject = "Recordatorio de Turno Médico"

// AppointmentSource is the slice of the appointment store the scheduler needs.
type AppointmentSource interface {
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]appointments.Appointment, error)
	GetDetail(ctx context.Context, id int64) (*appointments.Detail, error)
}

// Scheduler runs the two reminder passes: generation backfills reminder rows
// for appointments starting within the lookahead window, and dispatch delivers
// rows that have come due. Both passes are safe to rerun; generation checks
// for existing rows and dispatch only marks a reminder sent after a successful
// delivery, so a failed send is retried on the next tick.
type Scheduler struct {
	appts         AppointmentSource
	store         *Store
	sender        notify.EmailSender
	metrics       *metrics.ReminderMetrics
	logger        *logging.Logger
	generateEvery time.Duration
	dispatchEvery time.Duration
	lookahead     time.Duration
	leadTime      time.Duration
	hospitalName  string
	now           func() time.Time
}

// NewScheduler creates a reminder scheduler with the default cadence:
// generation every 5 minutes over a 24 hour window, dispatch every minute,
// reminders due 1 hour before the appointment.
func NewScheduler(appts AppointmentSource, store *Store, sender notify.EmailSender, logger *logging.Logger) *Scheduler {
	if appts == nil {
		panic("reminders: appointment source required")
	}
	if store == nil {
		panic("reminders: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{
		appts:         appts,
		store:         store,
		sender:        sender,
		logger:        logger,
		generateEvery: 5 * time.Minute,
		dispatchEvery: time.Minute,
		lookahead:     24 * time.Hour,
		leadTime:      time.Hour,
		hospitalName:  "Hospital DAO",
		now:           time.Now,
	}
}

func (s *Scheduler) WithIntervals(generate, dispatch time.Duration) *Scheduler {
	if generate > 0 {
		s.generateEvery = generate
	}
	if dispatch > 0 {
		s.dispatchEvery = dispatch
	}
	return s
}

func (s *Scheduler) WithWindow(lookahead, leadTime time.Duration) *Scheduler {
	if lookahead > 0 {
		s.lookahead = lookahead
	}
	if leadTime > 0 {
		s.leadTime = leadTime
	}
	return s
}

func (s *Scheduler) WithHospitalName(name string) *Scheduler {
	if name != "" {
		s.hospitalName = name
	}
	return s
}

func (s *Scheduler) WithMetrics(m *metrics.ReminderMetrics) *Scheduler {
	s.metrics = m
	return s
}

// WithClock overrides the time source, used by tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	if now != nil {
		s.now = now
	}
	return s
}

// Run executes both passes once, then keeps them running on their tickers
// until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	generate := time.NewTicker(s.generateEvery)
	dispatch := time.NewTicker(s.dispatchEvery)
	defer generate.Stop()
	defer dispatch.Stop()

	s.runGenerate(ctx)
	s.runDispatch(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-generate.C:
			s.runGenerate(ctx)
		case <-dispatch.C:
			s.runDispatch(ctx)
		}
	}
}

func (s *Scheduler) runGenerate(ctx context.Context) {
	if n, err := s.GenerateOnce(ctx); err != nil {
		s.logger.Error("reminder generation pass failed", "error", err)
	} else if n > 0 {
		s.logger.Info("reminder generation pass complete", "created", n)
	}
}

func (s *Scheduler) runDispatch(ctx context.Context) {
	if n, err := s.DispatchOnce(ctx); err != nil {
		s.logger.Error("reminder dispatch pass failed", "error", err)
	} else if n > 0 {
		s.logger.Info("reminder dispatch pass complete", "sent", n)
	}
}

// GenerateOnce backfills reminder rows for appointments starting within the
// lookahead window. Returns the number of rows created.
func (s *Scheduler) GenerateOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	upcoming, err := s.appts.ListStartingBetween(ctx, now, now.Add(s.lookahead))
	if err != nil {
		return 0, fmt.Errorf("reminders: generate: %w", err)
	}

	created := 0
	for i := range upcoming {
		a := &upcoming[i]
		if a.Status == appointments.StatusCancelled {
			continue
		}
		exists, err := s.store.ExistsForAppointment(ctx, a.ID, ChannelEmail)
		if err != nil {
			s.logger.Error("reminder existence check failed", "appointment_id", a.ID, "error", err)
			continue
		}
		if exists {
			continue
		}
		r := &Reminder{
			AppointmentID: a.ID,
			Channel:       ChannelEmail,
			Message:       ReminderMessage(a.StartAt),
			SendAt:        a.StartAt.Add(-s.leadTime),
		}
		if err := s.store.Create(ctx, r); err != nil {
			s.logger.Error("reminder creation failed", "appointment_id", a.ID, "error", err)
			continue
		}
		s.metrics.ObserveGenerated()
		created++
	}
	return created, nil
}

// DispatchOnce delivers every due reminder. A reminder is only marked sent
// after its email goes out; failures are logged and retried next tick.
// Returns the number of reminders delivered.
func (s *Scheduler) DispatchOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	due, err := s.store.ListDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("reminders: dispatch: %w", err)
	}

	sent := 0
	for i := range due {
		r := &due[i]
		delivered, err := s.dispatchOne(ctx, r)
		if err != nil {
			s.metrics.ObserveSendFailure()
			s.logger.Error("reminder dispatch failed", "reminder_id", r.ID, "error", err)
			continue
		}
		if delivered {
			s.metrics.ObserveSent()
			sent++
		}
	}
	return sent, nil
}

func (s *Scheduler) dispatchOne(ctx context.Context, r *Reminder) (bool, error) {
	detail, err := s.appts.GetDetail(ctx, r.AppointmentID)
	if err != nil {
		return false, err
	}
	if detail == nil {
		s.logger.Warn("reminder refers to a missing appointment", "reminder_id", r.ID, "appointment_id", r.AppointmentID)
		return false, nil
	}
	if detail.PatientEmail == "" {
		// Row stays unsent; it is picked up again once the patient record
		// gains an email address.
		s.logger.Warn("reminder skipped: patient has no email", "reminder_id", r.ID, "appointment_id", r.AppointmentID)
		return false, nil
	}

	body := fmt.Sprintf(
		"Hola %s,\n\n"+
			"Te recordamos que tenés un turno programado:\n%s\n\n"+
			"Saludos,\n%s",
		detail.PatientFirstName,
		detail.StartAt.Format("2006-01-02 15:04"),
		s.hospitalName,
	)
	msg := notify.EmailMessage{
		To:      detail.PatientEmail,
		ToName:  fmt.Sprintf("%s %s", detail.PatientFirstName, detail.PatientLastName),
		Subject: reminderSubject,
		Body:    body,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return false, fmt.Errorf("send: %w", err)
	}
	if err := s.store.MarkSent(ctx, r.ID); err != nil {
		return false, err
	}

	s.logger.Info("reminder sent", "reminder_id", r.ID, "appointment_id", r.AppointmentID, "to", detail.PatientEmail)
	return true, nil
}
