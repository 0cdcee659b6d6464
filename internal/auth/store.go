package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
)

// ErrSessionExpired is returned by an expiring store for a session that
// outlived its duration.
var ErrSessionExpired = errors.New("session expired")

type expiringStore struct {
	next     repository.SessionRepository
	lifetime time.Duration
	now      func() time.Time
}

// WithExpiry wraps store so that sessions older than lifetime are treated as
// absent and purged on lookup. A lifetime of zero or less never expires.
func WithExpiry(store repository.SessionRepository, lifetime time.Duration, now func() time.Time) repository.SessionRepository {
	if now == nil {
		now = time.Now
	}
	return &expiringStore{next: store, lifetime: lifetime, now: now}
}

func (s *expiringStore) Create(ctx context.Context, session *domain.Session) error {
	return s.next.Create(ctx, session)
}

func (s *expiringStore) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	session, err := s.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.ExpiredAt(s.lifetime, s.now()) {
		_ = s.next.Delete(ctx, id)
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionExpired)
	}
	return session, nil
}

func (s *expiringStore) Delete(ctx context.Context, id string) error {
	return s.next.Delete(ctx, id)
}
