package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emilykangdev/CanIParkHere/internal/domain"
)

const keyPrefix = "session:"

// SessionStore implements domain.SessionStore on Redis with a TTL, so
// sign-check sessions survive restarts and expire on their own.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore wraps an existing Redis client. A zero ttl stores
// sessions without expiry.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Put stores an analysis as JSON under session:<id>.
func (s *SessionStore) Put(ctx context.Context, id string, analysis domain.SignAnalysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("redis: failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to store session: %w", err)
	}
	return nil
}

// Get retrieves a stored analysis; an expired or unknown id is reported
// as not-found, not as an error.
func (s *SessionStore) Get(ctx context.Context, id string) (domain.SignAnalysis, bool, error) {
	payload, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SignAnalysis{}, false, nil
	}
	if err != nil {
		return domain.SignAnalysis{}, false, fmt.Errorf("redis: failed to fetch session: %w", err)
	}

	var analysis domain.SignAnalysis
	if err := json.Unmarshal(payload, &analysis); err != nil {
		return domain.SignAnalysis{}, false, fmt.Errorf("redis: failed to unmarshal session: %w", err)
	}
	return analysis, true, nil
}

// Health checks Redis connectivity
func (s *SessionStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: health check failed: %w", err)
	}
	return nil
}
