package ownership

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory owner map for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	owners map[ResourceType]map[string]string
	Err    error // when set, every lookup fails with it
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{owners: make(map[ResourceType]map[string]string)}
}

func (s *MemoryStore) Set(resource ResourceType, id, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.owners[resource]
	if !ok {
		m = make(map[string]string)
		s.owners[resource] = m
	}
	m[id] = owner
}

func (s *MemoryStore) Owner(_ context.Context, resource ResourceType, id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return "", s.Err
	}
	owner, ok := s.owners[resource][id]
	if !ok {
		return "", ErrNotFound
	}
	return owner, nil
}
