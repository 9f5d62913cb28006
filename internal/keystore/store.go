// Package keystore provides the concurrent per-key state map shared by the
// in-memory limiters.
package keystore

import (
	"sync"
	"sync/atomic"
)

// Store maps keys to per-key state objects. Insertion is insert-if-absent:
// concurrent creators for the same key converge on a single winning value.
// Entries are never removed.
type Store[V any] struct {
	entries sync.Map // string -> *V
	size    atomic.Int64
}

// New returns an empty Store.
func New[V any]() *Store[V] {
	return &Store[V]{}
}

// LoadOrCreate returns the value held for key, creating it with create if
// the key is absent. create may be called even when another goroutine wins
// the insert; its result is then discarded.
func (s *Store[V]) LoadOrCreate(key string, create func() *V) *V {
	if v, ok := s.entries.Load(key); ok {
		return v.(*V)
	}
	v, loaded := s.entries.LoadOrStore(key, create())
	if !loaded {
		s.size.Add(1)
	}
	return v.(*V)
}

// Load returns the value held for key, if any.
func (s *Store[V]) Load(key string) (*V, bool) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*V), true
}

// IsCurrent reports whether v is still the live value for key.
func (s *Store[V]) IsCurrent(key string, v *V) bool {
	cur, ok := s.Load(key)
	return ok && cur == v
}

// Replace swaps old for next if old is still the live value for key.
// It returns false when another goroutine replaced it first.
func (s *Store[V]) Replace(key string, old, next *V) bool {
	return s.entries.CompareAndSwap(key, old, next)
}

// Len returns the number of distinct keys ever inserted.
func (s *Store[V]) Len() int {
	return int(s.size.Load())
}
