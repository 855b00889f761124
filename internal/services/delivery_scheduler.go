package services

import (
	"sync"
	"time"
)

// DeliveryScheduler owns the best-effort delayed tasks behind the
// sent -> delivered upgrade. Each task is tied to a connection session; when
// that session disconnects before the timer fires, the task is cancelled and
// the upgrade simply does not happen, which is not an error.
type DeliveryScheduler struct {
	mu     sync.Mutex
	timers map[string]map[*time.Timer]struct{}
}

func NewDeliveryScheduler() *DeliveryScheduler {
	return &DeliveryScheduler{timers: make(map[string]map[*time.Timer]struct{})}
}

// Schedule runs fn after delay unless the session is cancelled first.
func (s *DeliveryScheduler) Schedule(sessionID string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.timers[sessionID]
	if !ok {
		set = make(map[*time.Timer]struct{})
		s.timers[sessionID] = set
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if set, ok := s.timers[sessionID]; ok {
			if _, live := set[t]; !live {
				// Cancelled between firing and acquiring the lock.
				s.mu.Unlock()
				return
			}
			delete(set, t)
			if len(set) == 0 {
				delete(s.timers, sessionID)
			}
		} else {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		fn()
	})
	set[t] = struct{}{}
}

// CancelSession drops every pending task tied to a session.
func (s *DeliveryScheduler) CancelSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for t := range s.timers[sessionID] {
		t.Stop()
	}
	delete(s.timers, sessionID)
}

// Stop cancels everything; used at shutdown.
func (s *DeliveryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID, set := range s.timers {
		for t := range set {
			t.Stop()
		}
		delete(s.timers, sessionID)
	}
}
