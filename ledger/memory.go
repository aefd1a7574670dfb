package ledger

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore provides an in-memory implementation of Store.
//
// This implementation is suitable for single-instance deployments where
// flag state doesn't need to be shared across processes. For distributed
// deployments (load-balanced clusters, etc.), implement Store with a
// shared backend like Redis.
type InMemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	expiry map[string]time.Time
}

// NewInMemoryStore creates an empty in-memory ledger.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string]string),
		expiry: make(map[string]time.Time),
	}
}

// Get returns the value for key if present and not expired.
func (s *InMemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	if !ok {
		return "", false, nil
	}
	if expiry, hasTTL := s.expiry[key]; hasTTL && time.Now().After(expiry) {
		// Expired - clean it up
		delete(s.values, key)
		delete(s.expiry, key)
		return "", false, nil
	}
	return v, true, nil
}

// Set stores key with the given TTL. A zero TTL stores without expiry.
func (s *InMemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	if ttl > 0 {
		s.expiry[key] = time.Now().Add(ttl)
	} else {
		delete(s.expiry, key)
	}

	// Lazy cleanup of expired entries
	s.cleanupExpiredLocked()
	return nil
}

// Delete removes the entry for key.
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	delete(s.expiry, key)
	return nil
}

// cleanupExpiredLocked removes expired entries. Must be called with lock held.
func (s *InMemoryStore) cleanupExpiredLocked() {
	now := time.Now()
	for key, expiry := range s.expiry {
		if now.After(expiry) {
			delete(s.values, key)
			delete(s.expiry, key)
		}
	}
}

// Ensure InMemoryStore implements Store
var _ Store = (*InMemoryStore)(nil)
