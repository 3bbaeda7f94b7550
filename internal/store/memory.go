package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memorySlot struct {
	value     []byte
	updatedAt time.Time
}

// MemoryStore is an in-process Repository used by tests and the CLI.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]memorySlot
	now   func() time.Time
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{slots: make(map[string]memorySlot), now: time.Now}
}

// Get returns a copy of the slot stored under key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), slot.value...), nil
}

// Put stores a copy of value and stamps its write time.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = memorySlot{value: append([]byte(nil), value...), updatedAt: s.now()}
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}

// PurgeExpired removes slots not written within ttl and returns their keys sorted.
func (s *MemoryStore) PurgeExpired(_ context.Context, ttl time.Duration) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-ttl)
	var keys []string
	for key, slot := range s.slots {
		if slot.updatedAt.Before(cutoff) {
			delete(s.slots, key)
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored slots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

var (
	_ Repository = (*SQLiteStore)(nil)
	_ Repository = (*RedisStore)(nil)
	_ Repository = (*MemoryStore)(nil)
)
