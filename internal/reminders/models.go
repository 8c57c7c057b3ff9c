package reminders

import "time"

// ChannelEmail is the only delivery channel currently generated.
const ChannelEmail = "email"

// Reminder is a scheduled notification for an upcoming appointment. Rows are
// generated ahead of time and flipped to sent once delivered.
type Reminder struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	Channel       string    `json:"channel"`
	Message       string    `json:"message"`
	SendAt        time.Time `json:"send_at"`
	Sent          bool      `json:"sent"`
	CreatedAt     time.Time `json:"created_at"`
}
