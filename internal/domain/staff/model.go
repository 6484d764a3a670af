package staff

import (
	"time"

	"github.com/google/uuid"
)

// Account is a staff member who may use the management console. All staff
// carry the admin role; there are no finer-grained staff permissions.
type Account struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CreateRequest is the schema for provisioning a staff account.
type CreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
