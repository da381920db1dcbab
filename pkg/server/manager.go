package server

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// SessionManager tracks live sessions.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewSessionManager creates an empty session manager.
func NewSessionManager(logger *zap.Logger) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Add registers s; it is removed again when it closes.
func (sm *SessionManager) Add(s *Session) {
	sm.mu.Lock()
	sm.sessions[s.id] = s
	sm.mu.Unlock()
	s.onClose = sm.remove
}

func (sm *SessionManager) remove(s *Session) {
	sm.mu.Lock()
	delete(sm.sessions, s.id)
	sm.mu.Unlock()
}

// Get returns the session with the given ID.
func (sm *SessionManager) Get(id string) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (sm *SessionManager) Count() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// IDs returns the live session IDs in order.
func (sm *SessionManager) IDs() []string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown closes every session and waits for their goroutines.
func (sm *SessionManager) Shutdown() {
	sm.mu.Lock()
	all := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		all = append(all, s)
	}
	sm.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
	for _, s := range all {
		s.Wait()
	}
	if len(all) > 0 {
		sm.logger.Info("sessions closed", zap.Int("count", len(all)))
	}
}
