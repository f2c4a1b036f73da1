package patient

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

// activeOnly is the predicate every active read appends.
const activeOnly = `NOT deleted`

const patientCols = `id, name, email, phone, dob, gender, address, medical_history,
	COALESCE(registered_by, ''), deleted, deleted_at, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.DOB, &p.Gender, &p.Address, &p.MedicalHistory,
		&p.RegisteredByID, &p.Deleted, &p.DeletedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	return &p, nil
}

func (r *pgRepo) collect(rows pgx.Rows, err error) ([]*Patient, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgRepo) Create(ctx context.Context, p *Patient) error {
	var registeredBy *string
	if p.RegisteredByID != "" {
		registeredBy = &p.RegisteredByID
	}
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patients (id, name, email, phone, dob, gender, address, medical_history,
			registered_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Email, p.Phone, p.DOB, p.Gender, p.Address, p.MedicalHistory,
		registeredBy, p.CreatedAt, p.UpdatedAt)
	return db.TranslateError(err)
}

func (r *pgRepo) GetActive(ctx context.Context, id string) (*Patient, error) {
	return scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND `+activeOnly, id))
}

func (r *pgRepo) ListActive(ctx context.Context, page pagination.Params) ([]*Patient, int, error) {
	conn := db.Conn(ctx, r.pool)
	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE `+activeOnly).Scan(&total); err != nil {
		return nil, 0, err
	}
	var limit *int
	if !page.Unbounded() {
		limit = &page.Limit
	}
	out, err := r.collect(conn.Query(ctx, `SELECT `+patientCols+` FROM patients WHERE `+activeOnly+`
		ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, page.Offset))
	return out, total, err
}

func (r *pgRepo) Update(ctx context.Context, p *Patient) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE patients SET name = $2, email = $3, phone = $4, dob = $5, gender = $6,
			address = $7, medical_history = $8, updated_at = $9
		WHERE id = $1 AND `+activeOnly,
		p.ID, p.Name, p.Email, p.Phone, p.DOB, p.Gender, p.Address, p.MedicalHistory, p.UpdatedAt)
	if err != nil {
		return db.TranslateError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *pgRepo) Archive(ctx context.Context, id string, at time.Time) (*Patient, error) {
	return scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE patients SET deleted = TRUE, deleted_at = $2, updated_at = $2
		WHERE id = $1 AND `+activeOnly+`
		RETURNING `+patientCols, id, at))
}

func (r *pgRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM patients WHERE `+activeOnly).Scan(&n)
	return n, err
}

func (r *pgRepo) FindByIDs(ctx context.Context, ids []string) ([]*Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.collect(db.Conn(ctx, r.pool).Query(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = ANY($1)`, ids))
}
