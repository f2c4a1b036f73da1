package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/panacea/panacea/pkg/pagination"
)

type MemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *MemoryStore) List(_ context.Context, p pagination.Params) ([]*Entry, int, error) {
	s.mu.RLock()
	all := make([]*Entry, len(s.entries))
	for i, e := range s.entries {
		cp := *e
		all[i] = &cp
	}
	s.mu.RUnlock()

	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	start, end := p.Window(len(all))
	return all[start:end], len(all), nil
}
