package repo

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// memRepo keeps buckets in process memory. It is the default when no
// database is configured and what tests run against.
type memRepo struct {
	mu      sync.RWMutex
	buckets map[uuid.UUID]map[string]string
}

func NewMemory() Repo {
	return &memRepo{buckets: make(map[uuid.UUID]map[string]string)}
}

func (m *memRepo) Get(_ context.Context, clientID uuid.UUID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.buckets[clientID][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *memRepo) Set(_ context.Context, clientID uuid.UUID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[clientID]
	if !ok {
		b = make(map[string]string)
		m.buckets[clientID] = b
	}
	b[key] = value
	return nil
}

func (m *memRepo) Remove(_ context.Context, clientID uuid.UUID, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.buckets[clientID]
	for _, k := range keys {
		delete(b, k)
	}
	if len(b) == 0 {
		delete(m.buckets, clientID)
	}
	return nil
}
