package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/medrec/medrec/internal/domain/appointment"
	"github.com/medrec/medrec/internal/domain/prescription"
)

// Patient maps to the patient table. The password hash never leaves the
// server; the json tag below is what keeps it out of every response.
type Patient struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DateOfBirth  time.Time `db:"date_of_birth" json:"date_of_birth"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Address      *string   `db:"address" json:"address,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// WithRecords is a patient plus their clinical records, ordered the way the
// detail views show them: appointments by date_time ascending, prescriptions
// by refill_date ascending.
type WithRecords struct {
	Patient
	Appointments  []*appointment.Appointment   `json:"appointments"`
	Prescriptions []*prescription.Prescription `json:"prescriptions"`
}

// CreateRequest is the explicit schema for registering a patient.
type CreateRequest struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DateOfBirth string  `json:"date_of_birth"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}

// UpdateRequest carries partial updates; nil fields are left unchanged.
// A non-nil Password resets the credential.
type UpdateRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
	DateOfBirth *string `json:"date_of_birth"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
}
