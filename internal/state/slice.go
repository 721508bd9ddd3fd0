// Package state holds the console's view of backend resources. Each resource
// lives in its own Slice and is updated independently of the others.
package state

import (
	"sync"
	"time"
)

// Snapshot is a consistent read of a Slice.
type Snapshot[T any] struct {
	Value T
	// Loaded is false until the first successful publish.
	Loaded   bool
	SyncedAt time.Time
	Err      error
	Version  uint64
}

// Slice is a mutex-guarded resource value with its last successful sync marker
// and the error of the last failed attempt.
//
// Fetches take a ticket with Begin before they start. A result is applied
// only when its ticket is newer than the last applied one, so a slow fetch
// that started before a mutation never overwrites a reload issued after it.
type Slice[T any] struct {
	now func() time.Time

	mu      sync.RWMutex
	snap    Snapshot[T]
	issued  uint64
	applied uint64
}

func NewSlice[T any](now func() time.Time) *Slice[T] {
	if now == nil {
		now = time.Now
	}

	return &Slice[T]{now: now}
}

// Begin reserves a ticket for a fetch that is about to start.
func (s *Slice[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++

	return s.issued
}

// Publish replaces the value and clears the last error.
func (s *Slice[T]) Publish(v T) Snapshot[T] {
	snap, _ := s.PublishFrom(s.Begin(), v)

	return snap
}

// PublishFrom applies v fetched under ticket. It reports false and keeps the
// current value when a newer fetch was applied meanwhile.
func (s *Slice[T]) PublishFrom(ticket uint64, v T) (Snapshot[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.applied {
		return s.snap, false
	}

	s.applied = ticket
	s.snap = Snapshot[T]{
		Value:    v,
		Loaded:   true,
		SyncedAt: s.now(),
		Version:  s.snap.Version + 1,
	}

	return s.snap, true
}

// Fail records err and keeps the previous value.
func (s *Slice[T]) Fail(err error) Snapshot[T] {
	snap, _ := s.FailFrom(s.Begin(), err)

	return snap
}

// FailFrom records err of the fetch under ticket unless a newer one was applied.
func (s *Slice[T]) FailFrom(ticket uint64, err error) (Snapshot[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.applied {
		return s.snap, false
	}

	s.applied = ticket
	s.snap.Err = err

	return s.snap, true
}

// Reset drops the value, e.g. after logout. Fetches still in flight are
// discarded.
func (s *Slice[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applied = s.issued
	s.snap = Snapshot[T]{Version: s.snap.Version + 1}
}

func (s *Slice[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snap
}

func (s *Slice[T]) Get() T {
	return s.Snapshot().Value
}
