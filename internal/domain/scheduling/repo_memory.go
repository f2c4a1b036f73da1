package scheduling

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
	rows map[string]*Appointment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: map[string]*Appointment{}}
}

func (r *MemoryRepo) Create(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; ok {
		return apperr.ErrDuplicate
	}
	cp := *a
	cp.Patient, cp.Doctor = nil, nil
	r.rows[a.ID] = &cp
	return nil
}

func (r *MemoryRepo) Get(_ context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepo) List(_ context.Context, f Filter, page pagination.Params) ([]*Appointment, int, error) {
	r.mu.RLock()
	var all []*Appointment
	for _, a := range r.rows {
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		cp := *a
		all = append(all, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Date.Equal(all[j].Date) {
			return all[i].ID < all[j].ID
		}
		return all[i].Date.Before(all[j].Date)
	})
	start, end := page.Window(len(all))
	return all[start:end], len(all), nil
}

func (r *MemoryRepo) Update(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[a.ID]
	if !ok {
		return apperr.ErrNotFound
	}
	cur.Date, cur.Reason, cur.Status, cur.Notes, cur.UpdatedAt = a.Date, a.Reason, a.Status, a.Notes, a.UpdatedAt
	return nil
}

func (r *MemoryRepo) SetStatus(_ context.Context, id string, status Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[id]
	if !ok {
		return apperr.ErrNotFound
	}
	cur.Status, cur.UpdatedAt = status, at
	return nil
}

func (r *MemoryRepo) CountByStatus(_ context.Context, status Status) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.rows {
		if a.Status == status {
			n++
		}
	}
	return n, nil
}
