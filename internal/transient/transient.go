// Package transient tracks short-lived UI flags ("just copied") keyed by
// resource id. Each flag self-expires; the store owns every timer it creates
// and guarantees cancellation on supersession, explicit clear, and close.
package transient

import (
	"sync"
	"time"
)

type Store struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewStore() *Store {
	return &Store{
		timers: make(map[string]*time.Timer),
	}
}

// MarkActive activates the flag for key and schedules deactivation after d.
// A repeated call for the same key cancels the previous timer and replaces
// it, so the flag stays active for d from the latest call.
func (s *Store) MarkActive(key string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		// A superseded timer that fired anyway must not deactivate the
		// replacement.
		if s.timers[key] == timer {
			delete(s.timers, key)
		}
	})

	s.timers[key] = timer
}

// Active reports whether the flag for key is set. Pure lookup.
func (s *Store) Active(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[key]
	return ok
}

// Clear deactivates the flag and cancels its pending timer. Called when the
// owning link is deleted. Clearing an unset key is a no-op.
func (s *Store) Clear(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, ok := s.timers[key]; ok {
		timer.Stop()
		delete(s.timers, key)
	}
}

// Close cancels all pending timers.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, timer := range s.timers {
		timer.Stop()
		delete(s.timers, key)
	}
}
