package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panacea/panacea/internal/platform/db"
	"github.com/panacea/panacea/pkg/pagination"
)

type pgStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Insert(ctx context.Context, e *Entry) error {
	_, err := db.Conn(ctx, s.pool).Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, user_name, action, details, resource_id, ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.UserName, e.Action, e.Details, e.ResourceID, e.IP, e.CreatedAt)
	return db.TranslateError(err)
}

func (s *pgStore) List(ctx context.Context, p pagination.Params) ([]*Entry, int, error) {
	conn := db.Conn(ctx, s.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	// LIMIT NULL means no limit.
	var limit *int
	if !p.Unbounded() {
		limit = &p.Limit
	}
	rows, err := conn.Query(ctx, `
		SELECT id, user_id, user_name, action, details, resource_id, ip, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Action, &e.Details, &e.ResourceID, &e.IP, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &e)
	}
	return out, total, rows.Err()
}
