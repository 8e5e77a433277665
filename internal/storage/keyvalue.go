// Package storage mirrors the account collection into a key-value backend
// so that it survives restarts.
package storage

import (
	"context"
	"sync"
)

// AccountsKey is the key the account collection is stored under.
const AccountsKey = "identity-grid-accounts"

// KeyValue is a minimal key-value persistence backend.
type KeyValue interface {
	// Get returns the value stored under key, or (nil, nil) if there is none.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores or replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases the backend's resources.
	Close() error
}

// MemoryStore is a KeyValue kept in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *MemoryStore) Close() error { return nil }
