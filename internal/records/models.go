package records

import "time"

// MedicalRecord is a clinical note for a patient. The doctor reference is
// optional and survives doctor deletion as NULL.
type MedicalRecord struct {
	ID         int64     `json:"id"`
	PatientID  int64     `json:"patient_id"`
	DoctorID   *int64    `json:"doctor_id,omitempty"`
	RecordDate time.Time `json:"record_date"`
	Summary    string    `json:"summary,omitempty"`
}

// Prescription is a medication order attached to a medical record.
type Prescription struct {
	ID              int64     `json:"id"`
	MedicalRecordID int64     `json:"medical_record_id"`
	Medication      string    `json:"medication"`
	Dosage          string    `json:"dosage,omitempty"`
	Frequency       string    `json:"frequency,omitempty"`
	Instructions    string    `json:"instructions,omitempty"`
	IssuedAt        time.Time `json:"issued_at"`
}
