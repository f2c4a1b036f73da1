package clinical

import (
	"context"
	"sort"
	"sync"

	"github.com/panacea/panacea/pkg/pagination"
)

type MemoryRepo struct {
	mu   sync.RWMutex
	rows []*Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) Create(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	cp.Patient, cp.Doctor = nil, nil
	cp.Prescriptions = append([]Prescription(nil), r.Prescriptions...)
	m.rows = append(m.rows, &cp)
	return nil
}

// newest returns copies matching keep, newest first.
func (m *MemoryRepo) newest(keep func(*Record) bool) []*Record {
	m.mu.RLock()
	var out []*Record
	for _, r := range m.rows {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemoryRepo) ListByPatient(_ context.Context, patientID string, page pagination.Params) ([]*Record, int, error) {
	all := m.newest(func(r *Record) bool { return r.PatientID == patientID })
	start, end := page.Window(len(all))
	return all[start:end], len(all), nil
}

func (m *MemoryRepo) Recent(_ context.Context, limit int) ([]*Record, error) {
	all := m.newest(func(*Record) bool { return true })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
