package memory

import (
	"context"
	"sync"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
)

// SessionStore keeps sign analyses in a process-local map. Used when no
// Redis instance is configured; sessions do not survive a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.SignAnalysis
}

// NewSessionStore creates an empty in-process session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.SignAnalysis)}
}

// Put stores an analysis under the given session id.
func (s *SessionStore) Put(ctx context.Context, id string, analysis domain.SignAnalysis) error {
	s.mu.Lock()
	s.sessions[id] = analysis
	s.mu.Unlock()
	return nil
}

// Get retrieves a stored analysis.
func (s *SessionStore) Get(ctx context.Context, id string) (domain.SignAnalysis, bool, error) {
	s.mu.RLock()
	analysis, ok := s.sessions[id]
	s.mu.RUnlock()
	return analysis, ok, nil
}

// Health always returns nil for the in-process store.
func (s *SessionStore) Health(ctx context.Context) error {
	return nil
}
