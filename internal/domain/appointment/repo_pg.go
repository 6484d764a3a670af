package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medrec/medrec/internal/platform/db"
)

const fkViolation = "23503"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, provider_name, date_time, repeat_schedule, end_date, reason, created_at`

func (r *repoPG) scan(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ProviderName, &a.DateTime,
		&a.RepeatSchedule, &a.EndDate, &a.Reason, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

// mapPgError covers the race where the patient disappears between the
// service's existence check and the insert.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
		return ErrPatientNotFound
	}
	return err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, patient_id, provider_name, date_time, repeat_schedule, end_date, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		a.ID, a.PatientID, a.ProviderName, a.DateTime, a.RepeatSchedule, a.EndDate, a.Reason).
		Scan(&a.CreatedAt)
	return mapPgError(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointment SET provider_name=$2, date_time=$3, repeat_schedule=$4, end_date=$5, reason=$6
		WHERE id = $1`,
		a.ID, a.ProviderName, a.DateTime, a.RepeatSchedule, a.EndDate, a.Reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM appointment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment ORDER BY date_time ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+apptCols+` FROM appointment WHERE patient_id = $1 ORDER BY date_time ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM appointment WHERE patient_id = $1`, patientID)
	return err
}
