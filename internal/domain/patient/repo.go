package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns patients ordered by created_at descending, newest first.
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
