package scheduling

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/internal/platform/db"
	"github.com/panacea/panacea/pkg/pagination"
)

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const appointmentCols = `id, patient_id, doctor_id, date, reason, status, notes,
	COALESCE(created_by, ''), created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.Reason, &a.Status, &a.Notes,
		&a.CreatedByID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	return &a, nil
}

func (r *pgRepo) Create(ctx context.Context, a *Appointment) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, date, reason, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)`,
		a.ID, a.PatientID, a.DoctorID, a.Date, a.Reason, a.Status, a.Notes, a.CreatedByID, a.CreatedAt, a.UpdatedAt)
	return db.TranslateError(err)
}

func (r *pgRepo) Get(ctx context.Context, id string) (*Appointment, error) {
	return scanAppointment(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
}

func (r *pgRepo) List(ctx context.Context, f Filter, page pagination.Params) ([]*Appointment, int, error) {
	conn := db.Conn(ctx, r.pool)

	// An empty patient filter matches every row.
	const where = `WHERE ($1 = '' OR patient_id = $1)`

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM appointments `+where, f.PatientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	var limit *int
	if !page.Unbounded() {
		limit = &page.Limit
	}
	rows, err := conn.Query(ctx, `SELECT `+appointmentCols+` FROM appointments `+where+`
		ORDER BY date ASC, id ASC LIMIT $2 OFFSET $3`, f.PatientID, limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

func (r *pgRepo) Update(ctx context.Context, a *Appointment) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE appointments SET date = $2, reason = $3, status = $4, notes = $5, updated_at = $6
		WHERE id = $1`, a.ID, a.Date, a.Reason, a.Status, a.Notes, a.UpdatedAt)
	if err != nil {
		return db.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *pgRepo) SetStatus(ctx context.Context, id string, status Status, at time.Time) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		return db.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *pgRepo) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE status = $1`, status).Scan(&n)
	return n, err
}
