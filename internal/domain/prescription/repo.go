package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	Update(ctx context.Context, p *Prescription) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns all prescriptions ordered by refill_date ascending.
	List(ctx context.Context, limit, offset int) ([]*Prescription, int, error)
	// ListByPatient returns one patient's prescriptions, refill_date ascending.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error)
	// DeleteByPatient removes every prescription owned by the patient. It is
	// called inside the patient cascade-delete transaction.
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) error
}
