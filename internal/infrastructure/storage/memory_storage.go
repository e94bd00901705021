package storage

import (
	"context"
	"sync"

	"github.com/NourNaamah/E-Commerce-Product-Dashboard/internal/domain/repository"
)

type memoryLocalStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryLocalStorage in-memory local storage, lost on restart
func NewMemoryLocalStorage() repository.LocalStorage {
	return &memoryLocalStorage{
		items: make(map[string]string),
	}
}

// GetItem returns the stored value
func (m *memoryLocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.items[key]
	return value, exists, nil
}

// SetItem stores value under key
func (m *memoryLocalStorage) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = value
	return nil
}

// RemoveItem deletes key
func (m *memoryLocalStorage) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, key)
	return nil
}
