package kv

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store with the same per-bucket serialization
// semantics as SQLiteStore. Used by unit tests and as the "fresh device"
// target in share/merge round-trip tests.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{buckets: make(map[string][]byte)}
}

// Get returns a copy of the bucket's value, or nil when absent.
func (s *MemoryStore) Get(_ context.Context, bucket string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.buckets[bucket]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put overwrites the bucket's value.
func (s *MemoryStore) Put(_ context.Context, bucket string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = append([]byte(nil), value...)
	return nil
}

// Update applies fn to the current value and stores the result, all under
// the store lock so concurrent updates never interleave.
func (s *MemoryStore) Update(_ context.Context, bucket string, fn func(old []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.buckets[bucket])
	if err != nil {
		return err
	}
	s.buckets[bucket] = append([]byte(nil), next...)
	return nil
}

// Delete removes the bucket.
func (s *MemoryStore) Delete(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, bucket)
	return nil
}

var _ Store = (*MemoryStore)(nil)
