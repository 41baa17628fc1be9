// Package cache provides an in-process TTL store for computed API responses.
//
// Values are msgpack-encoded on Set, so a cached entry is a snapshot that the
// caller cannot mutate after the fact, and Get decodes into a fresh value.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// Store is a concurrency-safe key-value cache with per-entry expiry.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	log     zerolog.Logger
}

// New creates an empty store.
func New(log zerolog.Logger) *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
		log:     log.With().Str("component", "response_cache").Logger(),
	}
}

// Get decodes the entry for key into out. It reports false when the key is
// missing or expired.
func (s *Store) Get(key string, out interface{}) (bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return false, nil
	}
	if err := msgpack.Unmarshal(e.payload, out); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key for ttl. A non-positive ttl removes the key.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		s.Delete(key)
		return nil
	}

	payload, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}

	s.mu.Lock()
	s.entries[key] = entry{payload: payload, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Clear removes every entry. Called when the underlying data changes.
func (s *Store) Clear() {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = make(map[string]entry)
	s.mu.Unlock()

	if n > 0 {
		s.log.Debug().Int("entries", n).Msg("Response cache cleared")
	}
}

// Purge drops expired entries and returns how many were removed.
func (s *Store) Purge() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
