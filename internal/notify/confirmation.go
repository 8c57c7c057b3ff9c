package notify

import (
	"context"
	"fmt"

	"github.com/hospitaldao/appointments-api/internal/events"
	"github.com/hospitaldao/appointments-api/pkg/logging"
)

const confirmationSubject = "Confirmación de turno médico"

// ConfirmationNotifier emails the patient a confirmation when an appointment
// is created. Subscribed to appointment.created on the bus.
type ConfirmationNotifier struct {
	sender       EmailSender
	hospitalName string
	logger       *logging.Logger
}

// NewConfirmationNotifier creates the confirmation email handler.
func NewConfirmationNotifier(sender EmailSender, hospitalName string, logger *logging.Logger) *ConfirmationNotifier {
	if logger == nil {
		logger = logging.Default()
	}
	if hospitalName == "" {
		hospitalName = "Hospital DAO"
	}
	return &ConfirmationNotifier{sender: sender, hospitalName: hospitalName, logger: logger}
}

// Handle formats and sends the confirmation email. Missing patient email or
// doctor data aborts this handler only; a failed send is reported to the bus,
// which logs it without affecting the booking.
func (n *ConfirmationNotifier) Handle(ctx context.Context, payload any) error {
	evt, ok := payload.(events.AppointmentCreatedV1)
	if !ok {
		return fmt.Errorf("notify: unexpected payload type %T", payload)
	}

	if evt.PatientEmail == "" {
		n.logger.Warn("confirmation skipped: patient has no email", "appointment_id", evt.AppointmentID)
		return nil
	}
	if evt.DoctorFirstName == "" && evt.DoctorLastName == "" {
		n.logger.Warn("confirmation skipped: appointment has no doctor loaded", "appointment_id", evt.AppointmentID)
		return nil
	}

	specialty := evt.DoctorSpecialty
	if specialty == "" {
		specialty = "especialidad"
	}

	body := fmt.Sprintf(
		"Hola %s,\n\n"+
			"Tu turno con el doctor %s %s de %s fue confirmado para el día %s, %s a las %s horas.\n\n"+
			"¡Te esperamos!\n%s",
		evt.PatientFirstName,
		evt.DoctorFirstName, evt.DoctorLastName, specialty,
		SpanishWeekday(evt.StartAt), SpanishLongDate(evt.StartAt), evt.StartAt.Format("15:04"),
		n.hospitalName,
	)

	msg := EmailMessage{
		To:      evt.PatientEmail,
		ToName:  fmt.Sprintf("%s %s", evt.PatientFirstName, evt.PatientLastName),
		Subject: confirmationSubject,
		Body:    body,
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: confirmation send: %w", err)
	}

	n.logger.Info("confirmation email sent", "appointment_id", evt.AppointmentID, "to", evt.PatientEmail)
	return nil
}

var _ events.Handler = (*ConfirmationNotifier)(nil)
