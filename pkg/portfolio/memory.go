package portfolio

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = slices.Insert(m.records, 0, rec)
	return nil
}

func (m *MemoryStore) List(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.records), nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.records, func(r Record) bool { return r.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.records = slices.Delete(m.records, i, i+1)
	return nil
}
