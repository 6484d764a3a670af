package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Repeat schedules an appointment may recur on.
const (
	RepeatDaily   = "Daily"
	RepeatWeekly  = "Weekly"
	RepeatMonthly = "Monthly"
)

// ValidRepeatSchedules enumerates the accepted repeat_schedule values.
var ValidRepeatSchedules = map[string]bool{
	RepeatDaily:   true,
	RepeatWeekly:  true,
	RepeatMonthly: true,
}

// Appointment maps to the appointment table. It belongs to exactly one
// patient for its entire lifetime; there is no reassignment.
type Appointment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ProviderName   string     `db:"provider_name" json:"provider_name"`
	DateTime       time.Time  `db:"date_time" json:"date_time"`
	RepeatSchedule *string    `db:"repeat_schedule" json:"repeat_schedule,omitempty"`
	EndDate        *time.Time `db:"end_date" json:"end_date,omitempty"`
	Reason         *string    `db:"reason" json:"reason,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// CreateRequest is the explicit schema for creating an appointment. Dates
// arrive as canonical strings and are parsed before anything reaches storage.
type CreateRequest struct {
	PatientID      string  `json:"patient_id"`
	ProviderName   string  `json:"provider_name"`
	DateTime       string  `json:"date_time"`
	RepeatSchedule *string `json:"repeat_schedule"`
	EndDate        *string `json:"end_date"`
	Reason         *string `json:"reason"`
}

// UpdateRequest carries partial updates; nil fields are left unchanged.
// Setting repeat_schedule or end_date to an empty string clears it.
type UpdateRequest struct {
	ProviderName   *string `json:"provider_name"`
	DateTime       *string `json:"date_time"`
	RepeatSchedule *string `json:"repeat_schedule"`
	EndDate        *string `json:"end_date"`
	Reason         *string `json:"reason"`
}
