// Package store provides the in-memory snapshot store shared by a daemon's
// change sources and its broadcast server.
package store

import (
	"sync"
)

// Snapshot constrains the state record a daemon serves. Equal must be a
// field-wise value comparison; it decides whether a change is
// broadcast-worthy.
type Snapshot[T any] interface {
	Equal(T) bool
}

// Store holds the single authoritative snapshot for a daemon.
// It is thread-safe and supports pub/sub for broadcast-worthy changes.
// The lock is held only for the compare-and-swap; it is never held across
// socket I/O.
type Store[T Snapshot[T]] struct {
	mu          sync.RWMutex
	current     T
	subscribers map[chan T]struct{}
}

// New creates a Store seeded with an initial snapshot.
func New[T Snapshot[T]](initial T) *Store[T] {
	return &Store[T]{
		current:     initial,
		subscribers: make(map[chan T]struct{}),
	}
}

// Get returns the current snapshot.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply replaces the snapshot if the candidate differs from the stored
// value and reports whether a broadcast-worthy change occurred. Identical
// candidates produce no notification.
func (s *Store[T]) Apply(next T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if next.Equal(s.current) {
		return false
	}
	s.current = next
	s.notifyLocked(next)
	return true
}

// Update applies fn to the current snapshot under the lock and swaps in the
// result if it differs. This is the merge path for partial updates: fn
// copies the fields it does not recompute from the prior value.
func (s *Store[T]) Update(fn func(T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.current)
	if next.Equal(s.current) {
		return false
	}
	s.current = next
	s.notifyLocked(next)
	return true
}

// notifyLocked fans the new snapshot out to subscribers. Sends are
// non-blocking so a slow consumer never stalls a change source.
func (s *Store[T]) notifyLocked(next T) {
	for ch := range s.subscribers {
		select {
		case ch <- next:
		default:
		}
	}
}

// Subscribe creates a new subscription channel for snapshot changes.
func (s *Store[T]) Subscribe() chan T {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan T, 64)
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store[T]) Unsubscribe(ch chan T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}
