package journal

import (
	"context"
	"sync"

	"github.com/Axel-C19/OpenMarket/pkg/domain"
)

// MemoryStore keeps journal entries in process memory. First write
// wins; a second Put under the same key is a no-op.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]domain.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]domain.Event)}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (domain.Event, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.entries[key]
	return event, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, key Key, event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; ok {
		return nil
	}
	m.entries[key] = event
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}
