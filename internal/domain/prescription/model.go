package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Refill schedules a prescription may be dispensed on.
const (
	RefillWeekly    = "Weekly"
	RefillMonthly   = "Monthly"
	RefillQuarterly = "Quarterly"
	RefillAsNeeded  = "As Needed"
)

// ValidRefillSchedules enumerates the accepted refill_schedule values.
var ValidRefillSchedules = map[string]bool{
	RefillWeekly:    true,
	RefillMonthly:   true,
	RefillQuarterly: true,
	RefillAsNeeded:  true,
}

// Prescription maps to the prescription table. Like appointments it belongs
// to exactly one patient for its entire lifetime.
type Prescription struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	MedicationName string    `db:"medication_name" json:"medication_name"`
	Dosage         string    `db:"dosage" json:"dosage"`
	Quantity       int       `db:"quantity" json:"quantity"`
	RefillDate     time.Time `db:"refill_date" json:"refill_date"`
	RefillSchedule string    `db:"refill_schedule" json:"refill_schedule"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// CreateRequest is the explicit schema for writing a prescription.
type CreateRequest struct {
	PatientID      string `json:"patient_id"`
	MedicationName string `json:"medication_name"`
	Dosage         string `json:"dosage"`
	Quantity       int    `json:"quantity"`
	RefillDate     string `json:"refill_date"`
	RefillSchedule string `json:"refill_schedule"`
}

// UpdateRequest carries partial updates; nil fields are left unchanged.
type UpdateRequest struct {
	MedicationName *string `json:"medication_name"`
	Dosage         *string `json:"dosage"`
	Quantity       *int    `json:"quantity"`
	RefillDate     *string `json:"refill_date"`
	RefillSchedule *string `json:"refill_schedule"`
}
