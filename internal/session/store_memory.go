package session

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryCapacity bounds the number of tracked client addresses.
const DefaultMemoryCapacity = 10000

// MemoryStore is a process-local AttemptStore. Records are lost on restart and
// the least recently used client is evicted once capacity is reached.
type MemoryStore struct {
	cache *lru.Cache[string, Record]
}

var _ AttemptStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding at most capacity clients.
// capacity <= 0 selects DefaultMemoryCapacity.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	cache, err := lru.New[string, Record](capacity)
	if err != nil {
		return nil, fmt.Errorf("session: memory store: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (Record, bool, error) {
	rec, ok := s.cache.Get(key)
	return rec, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, rec Record) error {
	s.cache.Add(key, rec)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Remove(key)
	return nil
}

// Len returns the number of tracked clients.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
