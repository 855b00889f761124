package services

import (
	"sync"

	"github.com/google/uuid"
)

// PresenceRegistry is the process-local session registry: userID -> the set
// of live connection session IDs. It is created at server start and injected
// wherever presence is consulted; nothing reaches into shared globals.
//
// Disconnects are session-scoped so a stale disconnect racing a reconnect
// cannot clear the newer session's presence.
type PresenceRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[string]struct{}
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{sessions: make(map[uuid.UUID]map[string]struct{})}
}

// Connect registers a session and reports whether it is the user's first
// live connection.
func (r *PresenceRegistry) Connect(userID uuid.UUID, sessionID string) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[userID]
	if !ok {
		set = make(map[string]struct{})
		r.sessions[userID] = set
	}
	first = len(set) == 0
	set[sessionID] = struct{}{}
	return first
}

// Disconnect removes a session. known is false when the session was not
// registered (a stale disconnect); last is true when the user has no
// remaining connections.
func (r *PresenceRegistry) Disconnect(userID uuid.UUID, sessionID string) (last, known bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.sessions[userID]
	if !ok {
		return false, false
	}
	if _, ok := set[sessionID]; !ok {
		return false, false
	}
	delete(set, sessionID)
	if len(set) == 0 {
		delete(r.sessions, userID)
		return true, true
	}
	return false, true
}

func (r *PresenceRegistry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID]) > 0
}

func (r *PresenceRegistry) SessionCount(userID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[userID])
}

// AnySession returns one live session ID for the user, used to tie scheduled
// work to a connection's lifetime.
func (r *PresenceRegistry) AnySession(userID uuid.UUID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.sessions[userID] {
		return id, true
	}
	return "", false
}
