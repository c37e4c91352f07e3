package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
)

// ErrSessionNotFound reports a follow-up against an unknown or expired
// session id.
var ErrSessionNotFound = errors.New("followup: session not found")

// FollowUpService answers questions about a previously analyzed sign.
type FollowUpService struct {
	bridge   *SignAIBridge
	sessions domain.SessionStore
}

// NewFollowUpService creates a new follow-up service
func NewFollowUpService(bridge *SignAIBridge, sessions domain.SessionStore) *FollowUpService {
	return &FollowUpService{bridge: bridge, sessions: sessions}
}

// Ask retrieves the stored analysis for the session and asks the AI
// backend the user's question against it.
func (s *FollowUpService) Ask(ctx context.Context, sessionID, question string, at time.Time) (string, error) {
	analysis, ok, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("followup: failed to load session: %w", err)
	}
	if !ok {
		return "", ErrSessionNotFound
	}

	answer, err := s.bridge.Answer(ctx, analysis, question, at)
	if err != nil {
		return "", err
	}
	return answer, nil
}
