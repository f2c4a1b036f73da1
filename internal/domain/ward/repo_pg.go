package ward

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panacea/panacea/internal/platform/db"
)

type pgRepo struct {
	pool *pgxpool.Pool
}

func NewPGRepo(pool *pgxpool.Pool) Repository {
	return &pgRepo{pool: pool}
}

func (p *pgRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := db.Conn(ctx, p.pool).QueryRow(ctx, `SELECT COUNT(*) FROM wards`).Scan(&n)
	return n, err
}

func (p *pgRepo) InsertMany(ctx context.Context, wards []*Ward) error {
	return db.WithTx(ctx, p.pool, func(ctx context.Context) error {
		conn := db.Conn(ctx, p.pool)
		for _, w := range wards {
			_, err := conn.Exec(ctx, `
				INSERT INTO wards (id, name, type, capacity, occupied, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				w.ID, w.Name, string(w.Type), w.Capacity, w.Occupied, w.CreatedAt, w.UpdatedAt)
			if err != nil {
				return db.TranslateError(err)
			}
			for i, b := range w.Beds {
				_, err := conn.Exec(ctx, `
					INSERT INTO ward_beds (id, ward_id, position, number, is_occupied, patient_id)
					VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))`,
					b.ID, w.ID, i, b.Number, b.Occupied, b.PatientID)
				if err != nil {
					return db.TranslateError(err)
				}
			}
		}
		return nil
	})
}

func (p *pgRepo) List(ctx context.Context) ([]*Ward, error) {
	conn := db.Conn(ctx, p.pool)
	rows, err := conn.Query(ctx, `
		SELECT id, name, type, capacity, occupied, created_at, updated_at
		FROM wards ORDER BY name`)
	if err != nil {
		return nil, err
	}
	var out []*Ward
	byID := map[string]*Ward{}
	for rows.Next() {
		var w Ward
		if err := rows.Scan(&w.ID, &w.Name, &w.Type, &w.Capacity, &w.Occupied, &w.CreatedAt, &w.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		w.Beds = []Bed{}
		out = append(out, &w)
		byID[w.ID] = &w
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	rows, err = conn.Query(ctx, `
		SELECT ward_id, id, number, is_occupied, COALESCE(patient_id, '')
		FROM ward_beds ORDER BY ward_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var wardID string
		var b Bed
		if err := rows.Scan(&wardID, &b.ID, &b.Number, &b.Occupied, &b.PatientID); err != nil {
			return nil, err
		}
		if w, ok := byID[wardID]; ok {
			w.Beds = append(w.Beds, b)
		}
	}
	return out, rows.Err()
}

// lockBed takes row locks on the ward and the bed, in that order, and
// returns the bed's current state.
func lockBed(ctx context.Context, conn db.Querier, wardID, bedID string) (Bed, error) {
	var id string
	err := conn.QueryRow(ctx, `SELECT id FROM wards WHERE id = $1 FOR UPDATE`, wardID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bed{}, ErrWardNotFound
	}
	if err != nil {
		return Bed{}, err
	}

	b := Bed{ID: bedID}
	err = conn.QueryRow(ctx, `
		SELECT number, is_occupied, COALESCE(patient_id, '')
		FROM ward_beds WHERE id = $1 AND ward_id = $2 FOR UPDATE`, bedID, wardID).
		Scan(&b.Number, &b.Occupied, &b.PatientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bed{}, ErrBedNotFound
	}
	return b, err
}

func (p *pgRepo) get(ctx context.Context, conn db.Querier, wardID string) (*Ward, error) {
	var w Ward
	err := conn.QueryRow(ctx, `
		SELECT id, name, type, capacity, occupied, created_at, updated_at
		FROM wards WHERE id = $1`, wardID).
		Scan(&w.ID, &w.Name, &w.Type, &w.Capacity, &w.Occupied, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, db.TranslateError(err)
	}
	rows, err := conn.Query(ctx, `
		SELECT id, number, is_occupied, COALESCE(patient_id, '')
		FROM ward_beds WHERE ward_id = $1 ORDER BY position`, wardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	w.Beds = []Bed{}
	for rows.Next() {
		var b Bed
		if err := rows.Scan(&b.ID, &b.Number, &b.Occupied, &b.PatientID); err != nil {
			return nil, err
		}
		w.Beds = append(w.Beds, b)
	}
	return &w, rows.Err()
}

func (p *pgRepo) Admit(ctx context.Context, wardID, bedID, patientID string, at time.Time) (*Ward, error) {
	var out *Ward
	err := db.WithTx(ctx, p.pool, func(ctx context.Context) error {
		conn := db.Conn(ctx, p.pool)
		b, err := lockBed(ctx, conn, wardID, bedID)
		if err != nil {
			return err
		}
		if b.Occupied {
			return ErrBedTaken
		}
		if _, err := conn.Exec(ctx, `UPDATE ward_beds SET is_occupied = TRUE, patient_id = $2 WHERE id = $1`,
			bedID, patientID); err != nil {
			return db.TranslateError(err)
		}
		if _, err := conn.Exec(ctx, `UPDATE wards SET occupied = LEAST(capacity, occupied + 1), updated_at = $2 WHERE id = $1`,
			wardID, at); err != nil {
			return err
		}
		out, err = p.get(ctx, conn, wardID)
		return err
	})
	return out, err
}

func (p *pgRepo) Discharge(ctx context.Context, wardID, bedID string, at time.Time) (*Ward, string, error) {
	var (
		out       *Ward
		patientID string
	)
	err := db.WithTx(ctx, p.pool, func(ctx context.Context) error {
		conn := db.Conn(ctx, p.pool)
		b, err := lockBed(ctx, conn, wardID, bedID)
		if err != nil {
			return err
		}
		if !b.Occupied {
			return ErrBedFree
		}
		patientID = b.PatientID
		if _, err := conn.Exec(ctx, `UPDATE ward_beds SET is_occupied = FALSE, patient_id = NULL WHERE id = $1`, bedID); err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, `UPDATE wards SET occupied = GREATEST(0, occupied - 1), updated_at = $2 WHERE id = $1`,
			wardID, at); err != nil {
			return err
		}
		out, err = p.get(ctx, conn, wardID)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return out, patientID, nil
}

func (p *pgRepo) Totals(ctx context.Context) (Occupancy, error) {
	var o Occupancy
	err := db.Conn(ctx, p.pool).QueryRow(ctx,
		`SELECT COALESCE(SUM(capacity), 0), COALESCE(SUM(occupied), 0) FROM wards`).
		Scan(&o.Capacity, &o.Occupied)
	return o, err
}
