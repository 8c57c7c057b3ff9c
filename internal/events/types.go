package events

import "time"

// Event names published on the bus.
const (
	AppointmentCreated = "appointment.created"
)

// AppointmentCreatedV1 carries the fully loaded appointment, with patient and
// doctor resolved so handlers don't need to hit the store again.
type AppointmentCreatedV1 struct {
	EventID          string    `json:"event_id"`
	AppointmentID    int64     `json:"appointment_id"`
	PatientID        int64     `json:"patient_id"`
	PatientFirstName string    `json:"patient_first_name"`
	PatientLastName  string    `json:"patient_last_name"`
	PatientEmail     string    `json:"patient_email,omitempty"`
	DoctorID         int64     `json:"doctor_id"`
	DoctorFirstName  string    `json:"doctor_first_name"`
	DoctorLastName   string    `json:"doctor_last_name"`
	DoctorSpecialty  string    `json:"doctor_specialty,omitempty"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}
