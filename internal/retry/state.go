package retry

import (
	"sync"
	"time"
)

// State holds pending server-directed delay overrides, one slot per
// callable identity. An override applies to exactly one following attempt:
// reading it clears it, so later attempts fall back to the wait strategy
// unless the server hints again.
type State struct {
	mu        sync.Mutex
	overrides map[string]time.Duration
}

func NewState() *State {
	return &State{overrides: make(map[string]time.Duration)}
}

// Set queues an override for id, replacing any pending one.
func (s *State) Set(id string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[id] = d
}

// TakeAndClear returns the pending override for id, if any, and clears it.
func (s *State) TakeAndClear(id string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.overrides[id]
	if ok {
		delete(s.overrides, id)
	}
	return d, ok
}
