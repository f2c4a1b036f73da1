package patient

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/panacea/panacea/internal/platform/apperr"
	"github.com/panacea/panacea/pkg/pagination"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	rows map[string]*Patient
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[string]*Patient{}}
}

func active(p *Patient) bool { return !p.Deleted }

func clone(p *Patient) *Patient {
	cp := *p
	cp.MedicalHistory = append([]string(nil), p.MedicalHistory...)
	return &cp
}

// phoneTaken must be called with mu held.
func (r *MemoryRepo) phoneTaken(phone, exceptID string) bool {
	for _, p := range r.rows {
		if active(p) && p.Phone == phone && p.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) Create(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phoneTaken(p.Phone, "") {
		return apperr.ErrDuplicate
	}
	r.rows[p.ID] = clone(p)
	return nil
}

func (r *MemoryRepo) GetActive(_ context.Context, id string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[id]
	if !ok || !active(p) {
		return nil, apperr.ErrNotFound
	}
	return clone(p), nil
}

func (r *MemoryRepo) ListActive(_ context.Context, page pagination.Params) ([]*Patient, int, error) {
	r.mu.RLock()
	var all []*Patient
	for _, p := range r.rows {
		if active(p) {
			all = append(all, clone(p))
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start, end := page.Window(len(all))
	return all[start:end], len(all), nil
}

func (r *MemoryRepo) Update(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[p.ID]
	if !ok || !active(cur) {
		return apperr.ErrNotFound
	}
	if r.phoneTaken(p.Phone, p.ID) {
		return apperr.ErrDuplicate
	}
	next := clone(p)
	next.RegisteredByID = cur.RegisteredByID
	next.CreatedAt = cur.CreatedAt
	next.Deleted, next.DeletedAt = cur.Deleted, cur.DeletedAt
	r.rows[p.ID] = next
	return nil
}

func (r *MemoryRepo) Archive(_ context.Context, id string, at time.Time) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok || !active(p) {
		return nil, apperr.ErrNotFound
	}
	p.Deleted = true
	p.DeletedAt = &at
	p.UpdatedAt = at
	return clone(p), nil
}

func (r *MemoryRepo) CountActive(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.rows {
		if active(p) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) FindByIDs(_ context.Context, ids []string) ([]*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Patient
	for _, id := range ids {
		if p, ok := r.rows[id]; ok {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

// Raw returns the stored row regardless of archive state.
func (r *MemoryRepo) Raw(id string) (*Patient, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, false
	}
	return clone(p), true
}
