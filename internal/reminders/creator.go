package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/hospitaldao/appointments-api/internal/events"
	"github.com/hospitaldao/appointments-api/internal/observability/metrics"
	"github.com/hospitaldao/appointments-api/pkg/logging"
)

// Creator schedules an email reminder as soon as an appointment is booked,
// so it exists even if the appointment starts before the next generation pass.
// Subscribed to appointment.created on the bus.
type Creator struct {
	store    *Store
	leadTime time.Duration
	metrics  *metrics.ReminderMetrics
	logger   *logging.Logger
}

// NewCreator creates the reminder-scheduling event handler. leadTime is how
// long before the appointment start the reminder becomes due.
func NewCreator(store *Store, leadTime time.Duration, logger *logging.Logger) *Creator {
	if store == nil {
		panic("reminders: store required")
	}
	if leadTime <= 0 {
		leadTime = time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Creator{store: store, leadTime: leadTime, logger: logger}
}

// WithMetrics attaches reminder counters.
func (c *Creator) WithMetrics(m *metrics.ReminderMetrics) *Creator {
	c.metrics = m
	return c
}

// Handle creates the reminder row for a newly booked appointment. Skips when
// one already exists for the email channel.
func (c *Creator) Handle(ctx context.Context, payload any) error {
	evt, ok := payload.(events.AppointmentCreatedV1)
	if !ok {
		return fmt.Errorf("reminders: unexpected payload type %T", payload)
	}

	exists, err := c.store.ExistsForAppointment(ctx, evt.AppointmentID, ChannelEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	r := &Reminder{
		AppointmentID: evt.AppointmentID,
		Channel:       ChannelEmail,
		Message:       ReminderMessage(evt.StartAt),
		SendAt:        evt.StartAt.Add(-c.leadTime),
	}
	if err := c.store.Create(ctx, r); err != nil {
		return err
	}

	c.metrics.ObserveGenerated()
	c.logger.Info("reminder scheduled",
		"reminder_id", r.ID,
		"appointment_id", evt.AppointmentID,
		"send_at", r.SendAt,
	)
	return nil
}

// ReminderMessage is the stored reminder text for an appointment starting at
// the given time.
func ReminderMessage(startAt time.Time) string {
	return fmt.Sprintf("Tienes un turno el %s", startAt.Format("2006-01-02 15:04"))
}

var _ events.Handler = (*Creator)(nil)
