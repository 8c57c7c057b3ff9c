package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitaldao/appointments-api/internal/events"
)

type mockEmailSender struct {
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func sampleEvent() events.AppointmentCreatedV1 {
	return events.AppointmentCreatedV1{
		EventID:          "evt-1",
		AppointmentID:    33,
		PatientFirstName: "Ana",
		PatientLastName:  "García",
		PatientEmail:     "ana@example.com",
		DoctorFirstName:  "Luis",
		DoctorLastName:   "Pérez",
		DoctorSpecialty:  "Cardiología",
		StartAt:          time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC),
		EndAt:            time.Date(2025, 11, 10, 9, 30, 0, 0, time.UTC),
	}
}

func TestConfirmationEmailContent(t *testing.T) {
	sender := &mockEmailSender{}
	notifier := NewConfirmationNotifier(sender, "", nil)

	err := notifier.Handle(context.Background(), sampleEvent())
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, "ana@example.com", msg.To)
	assert.Equal(t, "Confirmación de turno médico", msg.Subject)
	assert.Contains(t, msg.Body, "Hola Ana,")
	assert.Contains(t, msg.Body, "doctor Luis Pérez de Cardiología")
	assert.Contains(t, msg.Body, "Lunes, 10 de noviembre a las 09:00 horas")
	assert.Contains(t, msg.Body, "Hospital DAO")
}

func TestConfirmationSkipsPatientWithoutEmail(t *testing.T) {
	sender := &mockEmailSender{}
	notifier := NewConfirmationNotifier(sender, "", nil)

	evt := sampleEvent()
	evt.PatientEmail = ""

	err := notifier.Handle(context.Background(), evt)
	require.NoError(t, err, "missing email aborts the handler without error")
	assert.Empty(t, sender.sent)
}

func TestConfirmationSkipsMissingDoctor(t *testing.T) {
	sender := &mockEmailSender{}
	notifier := NewConfirmationNotifier(sender, "", nil)

	evt := sampleEvent()
	evt.DoctorFirstName = ""
	evt.DoctorLastName = ""

	err := notifier.Handle(context.Background(), evt)
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestConfirmationFallsBackWithoutSpecialty(t *testing.T) {
	sender := &mockEmailSender{}
	notifier := NewConfirmationNotifier(sender, "", nil)

	evt := sampleEvent()
	evt.DoctorSpecialty = ""

	require.NoError(t, notifier.Handle(context.Background(), evt))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Body, "de especialidad fue confirmado")
}

func TestConfirmationPropagatesSendFailure(t *testing.T) {
	sender := &mockEmailSender{callErr: errors.New("smtp down")}
	notifier := NewConfirmationNotifier(sender, "", nil)

	err := notifier.Handle(context.Background(), sampleEvent())
	assert.Error(t, err)
}

func TestConfirmationRejectsWrongPayload(t *testing.T) {
	notifier := NewConfirmationNotifier(&mockEmailSender{}, "", nil)

	err := notifier.Handle(context.Background(), "not an event")
	assert.Error(t, err)
}

func TestSpanishFormatting(t *testing.T) {
	tests := []struct {
		t       time.Time
		weekday string
		long    string
	}{
		{time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC), "Lunes", "10 de noviembre"},
		{time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), "Sábado", "1 de marzo"},
		{time.Date(2026, 1, 4, 8, 0, 0, 0, time.UTC), "Domingo", "4 de enero"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.weekday, SpanishWeekday(tt.t))
		assert.Equal(t, tt.long, SpanishLongDate(tt.t))
	}
}
