package staff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/medrec/internal/platform/db"
)

const uniqueViolation = "23505"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const staffCols = `id, name, email, password_hash, created_at`

func (r *repoPG) scan(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Account) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO staff_account (id, name, email, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		a.ID, a.Name, a.Email, a.PasswordHash).
		Scan(&a.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff_account WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff_account WHERE email = $1`, email))
}
