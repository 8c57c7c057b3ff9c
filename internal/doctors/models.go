package doctors

import "time"

// Specialty is a medical specialty doctors can be assigned to.
type Specialty struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Doctor carries the doctor's registry data plus the assigned specialties.
// The license number is unique.
type Doctor struct {
	ID            int64       `json:"id"`
	FirstName     string      `json:"first_name"`
	LastName      string      `json:"last_name"`
	LicenseNumber string      `json:"license_number"`
	Email         string      `json:"email,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	Address       string      `json:"address,omitempty"`
	Specialties   []Specialty `json:"specialties"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// WorkingHour is a weekly availability slot for a doctor. Times are "HH:MM"
// strings in the clinic's local time.
type WorkingHour struct {
	ID        int64  `json:"id"`
	DoctorID  int64  `json:"doctor_id"`
	Weekday   string `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
