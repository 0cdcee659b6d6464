package repository

import (
	"context"

	"github.com/andressep95/session-auth/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// GetByID fails with ErrNotFound when the session does not exist.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Delete fails with ErrNotFound when the session does not exist.
	Delete(ctx context.Context, id string) error
}
