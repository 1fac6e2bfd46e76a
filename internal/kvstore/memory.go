package kvstore

import (
	"context"
	"sync"
)

// MemoryStore is the in-process implementation, used by tests and by
// ephemeral runs that do not want a database file.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.docs[key]
	if !ok {
		return nil, 0, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, Revision(value), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, rev uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.docs[key]
	if rev == 0 {
		if exists {
			return ErrRevisionMismatch
		}
	} else {
		if !exists || Revision(current) != rev {
			return ErrRevisionMismatch
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	s.docs[key] = stored
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
