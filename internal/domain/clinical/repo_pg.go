package clinical

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panacea/panacea/internal/platform/db"
	"github.com/panacea/panacea/pkg/pagination"
)

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

const recordCols = `id, patient_id, doctor_id, COALESCE(appointment_id, ''),
	blood_pressure, temperature, pulse, weight, diagnosis, treatment, prescriptions, notes,
	created_at, updated_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.PatientID, &r.DoctorID, &r.AppointmentID,
		&r.Vitals.BloodPressure, &r.Vitals.Temperature, &r.Vitals.Pulse, &r.Vitals.Weight,
		&r.Diagnosis, &r.Treatment, &r.Prescriptions, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	return &r, nil
}

func collect(rows pgx.Rows, err error) ([]*Record, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *pgRepo) Create(ctx context.Context, r *Record) error {
	_, err := db.Conn(ctx, p.pool).Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, appointment_id,
			blood_pressure, temperature, pulse, weight, diagnosis, treatment, prescriptions, notes,
			created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		r.ID, r.PatientID, r.DoctorID, r.AppointmentID,
		r.Vitals.BloodPressure, r.Vitals.Temperature, r.Vitals.Pulse, r.Vitals.Weight,
		r.Diagnosis, r.Treatment, r.Prescriptions, r.Notes, r.CreatedAt, r.UpdatedAt)
	return db.TranslateError(err)
}

func (p *pgRepo) ListByPatient(ctx context.Context, patientID string, page pagination.Params) ([]*Record, int, error) {
	conn := db.Conn(ctx, p.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM medical_records WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	var limit *int
	if !page.Unbounded() {
		limit = &page.Limit
	}
	out, err := collect(conn.Query(ctx, `SELECT `+recordCols+` FROM medical_records WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, patientID, limit, page.Offset))
	return out, total, err
}

func (p *pgRepo) Recent(ctx context.Context, limit int) ([]*Record, error) {
	return collect(db.Conn(ctx, p.pool).Query(ctx, `SELECT `+recordCols+` FROM medical_records
		ORDER BY created_at DESC, id DESC LIMIT $1`, limit))
}
