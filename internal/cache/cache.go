package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays valid after it was written.
const DefaultTTL = 10 * time.Minute

// Entry is one cached value and the moment it was captured.
type Entry[T any] struct {
	Value      T
	CapturedAt time.Time
}

// Store keeps the latest value per key. Entries are never evicted; a read
// treats an entry as absent once now - CapturedAt reaches the TTL.
type Store[T any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]Entry[T]
}

type Option[T any] func(*Store[T])

// WithClock replaces time.Now, mainly for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(s *Store[T]) {
		s.now = now
	}
}

func New[T any](ttl time.Duration, opts ...Option[T]) *Store[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store[T]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]Entry[T]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}

// Read returns the entry for key if it is still valid.
func (s *Store[T]) Read(key string) (Entry[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.items[key]
	if !exists || !s.valid(entry) {
		return Entry[T]{}, false
	}
	return entry, true
}

// Write replaces the entry for key and stamps it with the current time.
func (s *Store[T]) Write(key string, value T) Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry[T]{
		Value:      value,
		CapturedAt: s.now(),
	}
	s.items[key] = entry
	return entry
}

// Snapshot returns every entry that is currently valid.
func (s *Store[T]) Snapshot() map[string]Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Entry[T], len(s.items))
	for key, entry := range s.items {
		if s.valid(entry) {
			out[key] = entry
		}
	}
	return out
}

func (s *Store[T]) valid(entry Entry[T]) bool {
	return s.now().Sub(entry.CapturedAt) < s.ttl
}
