package appointment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns all appointments ordered by date_time ascending.
	List(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	// ListByPatient returns one patient's appointments, date_time ascending.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	// DeleteByPatient removes every appointment owned by the patient. It is
	// called inside the patient cascade-delete transaction.
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}
