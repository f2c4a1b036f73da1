package ward

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/panacea/panacea/internal/platform/apperr"
)

type MemoryRepo struct {
	mu    sync.Mutex
	wards map[string]*Ward
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{wards: map[string]*Ward{}}
}

func clone(w *Ward) *Ward {
	cp := *w
	cp.Beds = append([]Bed(nil), w.Beds...)
	for i := range cp.Beds {
		cp.Beds[i].Patient = nil
	}
	return &cp
}

func (m *MemoryRepo) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wards), nil
}

func (m *MemoryRepo) InsertMany(_ context.Context, wards []*Ward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := map[string]bool{}
	for _, w := range m.wards {
		names[w.Name] = true
	}
	for _, w := range wards {
		if names[w.Name] {
			return apperr.ErrDuplicate
		}
		names[w.Name] = true
	}
	for _, w := range wards {
		m.wards[w.ID] = clone(w)
	}
	return nil
}

func (m *MemoryRepo) List(context.Context) ([]*Ward, error) {
	m.mu.Lock()
	out := make([]*Ward, 0, len(m.wards))
	for _, w := range m.wards {
		out = append(out, clone(w))
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepo) bed(wardID, bedID string) (*Ward, *Bed, error) {
	w, ok := m.wards[wardID]
	if !ok {
		return nil, nil, ErrWardNotFound
	}
	b, ok := w.Bed(bedID)
	if !ok {
		return nil, nil, ErrBedNotFound
	}
	return w, b, nil
}

func (m *MemoryRepo) Admit(_ context.Context, wardID, bedID, patientID string, at time.Time) (*Ward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, b, err := m.bed(wardID, bedID)
	if err != nil {
		return nil, err
	}
	if b.Occupied {
		return nil, ErrBedTaken
	}
	b.Occupied, b.PatientID = true, patientID
	w.Occupied = min(w.Capacity, w.Occupied+1)
	w.UpdatedAt = at
	return clone(w), nil
}

func (m *MemoryRepo) Discharge(_ context.Context, wardID, bedID string, at time.Time) (*Ward, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, b, err := m.bed(wardID, bedID)
	if err != nil {
		return nil, "", err
	}
	if !b.Occupied {
		return nil, "", ErrBedFree
	}
	patientID := b.PatientID
	b.Occupied, b.PatientID = false, ""
	w.Occupied = max(0, w.Occupied-1)
	w.UpdatedAt = at
	return clone(w), patientID, nil
}

func (m *MemoryRepo) Totals(context.Context) (Occupancy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var o Occupancy
	for _, w := range m.wards {
		o.Capacity += w.Capacity
		o.Occupied += w.Occupied
	}
	return o, nil
}
