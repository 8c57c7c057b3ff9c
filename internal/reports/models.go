package reports

import "time"

// AppointmentSummary is one appointment row inside a per-doctor report.
type AppointmentSummary struct {
	ID          int64     `json:"id"`
	PatientID   int64     `json:"patient_id"`
	PatientName string    `json:"patient_name"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	Status      string    `json:"status"`
	Attended    bool      `json:"attended"`
}

// DoctorReport aggregates a doctor's appointments in the requested window.
type DoctorReport struct {
	DoctorID         int64                `json:"doctor_id"`
	DoctorName       string               `json:"doctor_name"`
	AppointmentCount int                  `json:"appointment_count"`
	Appointments     []AppointmentSummary `json:"appointments"`
}

// SpecialtyReport counts appointments booked against a specialty's doctors.
type SpecialtyReport struct {
	SpecialtyID      int64  `json:"specialty_id"`
	SpecialtyName    string `json:"specialty_name"`
	AppointmentCount int    `json:"appointment_count"`
}

// AttendedPatient is one row of the patients-attended report.
type AttendedPatient struct {
	PatientID        int64      `json:"patient_id"`
	PatientName      string     `json:"patient_name"`
	AppointmentCount int        `json:"appointment_count"`
	LastAppointment  *time.Time `json:"last_appointment"`
}

// AttendedPage is a page of the patients-attended report.
type AttendedPage struct {
	Data        []AttendedPatient `json:"data"`
	CurrentPage int               `json:"current_page"`
	TotalPages  int               `json:"total_pages"`
}

// StatusBreakdown counts appointments per lifecycle status. Every status
// appears, zero counts included.
type StatusBreakdown map[string]int
