package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "db_tx"

// Queryable is the subset of pgx operations repositories need. Both
// *pgxpool.Pool and pgx.Tx satisfy it, so repository methods run the same
// whether they are inside a transaction or not.
type Queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ConnFromContext returns the transaction stashed by WithTx, or nil when the
// caller is not inside one.
func ConnFromContext(ctx context.Context) Queryable {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	if tx == nil {
		return nil
	}
	return tx
}

// WithTx runs fn inside a single transaction. The transaction is placed in
// the context so repositories pick it up via ConnFromContext; every
// repository call made by fn therefore commits or rolls back as one unit.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
