// Package redisstore keeps session records in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type sessionRepository struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewSessionRepository creates a Redis session repository. Records are
// purged by Redis after ttl; a ttl of zero keeps them until deleted.
func NewSessionRepository(client *redis.Client, ttl time.Duration) repository.SessionRepository {
	if ttl < 0 {
		ttl = 0
	}
	return &sessionRepository{redis: client, ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Create stores the session unless a record with the same ID exists
func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ok, err := r.redis.SetNX(ctx, sessionKey(session.ID), string(payload), r.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: session %s", repository.ErrDuplicate, session.ID)
	}

	return nil
}

// GetByID retrieves a session by its ID
func (r *sessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := r.redis.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}

	return &session, nil
}

// Delete removes a session by ID
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	n, err := r.redis.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session not found: %w", repository.ErrNotFound)
	}

	return nil
}
