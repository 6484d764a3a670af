package prescription

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

const rxCols = `id, patient_id, medication_name, dosage, quantity, refill_date, refill_schedule, created_at`

func (r *repoPG) scan(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.MedicationName, &p.Dosage,
		&p.Quantity, &p.RefillDate, &p.RefillSchedule, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
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

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO prescription (id, patient_id, medication_name, dosage, quantity, refill_date, refill_schedule)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		p.ID, p.PatientID, p.MedicationName, p.Dosage, p.Quantity, p.RefillDate, p.RefillSchedule).
		Scan(&p.CreatedAt)
	return mapPgError(err)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+rxCols+` FROM prescription WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Prescription) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE prescription SET medication_name=$2, dosage=$3, quantity=$4, refill_date=$5, refill_schedule=$6
		WHERE id = $1`,
		p.ID, p.MedicationName, p.Dosage, p.Quantity, p.RefillDate, p.RefillSchedule)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM prescription`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rxCols+` FROM prescription ORDER BY refill_date ASC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Prescription, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+rxCols+` FROM prescription WHERE patient_id = $1 ORDER BY refill_date ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM prescription WHERE patient_id = $1`, patientID)
	return err
}
