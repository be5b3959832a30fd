package storage

import (
	"context"
	"sync"
)

// MemoryKV keeps slots in process memory. Nothing survives a restart, so it
// is meant for tests and throwaway runs.
type MemoryKV struct {
	data map[string][]byte
	mu   sync.Mutex
}

// NewMemoryKV creates an empty in-memory KV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		data: make(map[string][]byte),
	}
}

// Get retrieves a copy of the value stored under key
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, exists := m.data[key]
	if !exists {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Set stores a copy of value under key
func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}
