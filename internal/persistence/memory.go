package persistence

import (
	"context"
	"sync"
)

// MemoryStore keeps slot values in process memory, keyed by session. Values
// are lost on restart; it backs CART_BACKEND=memory and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Slot returns the slot stored under key.
func (m *MemoryStore) Slot(key string) Slot {
	return &memorySlot{store: m, key: key}
}

// Len returns the number of stored values.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

type memorySlot struct {
	store *MemoryStore
	key   string
}

func (s *memorySlot) Read(_ context.Context) (string, bool, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	v, ok := s.store.values[s.key]
	return v, ok, nil
}

func (s *memorySlot) Write(_ context.Context, value string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.values[s.key] = value
	return nil
}

func (s *memorySlot) Clear(_ context.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	delete(s.store.values, s.key)
	return nil
}
