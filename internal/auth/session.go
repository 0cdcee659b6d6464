package auth

import (
	"context"
	"errors"
	"time"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionAuth resolves users from a session ID cookie. Whether sessions
// expire or survive restarts depends on the store it is given.
type SessionAuth struct {
	Auth
	sessions repository.SessionRepository
	users    repository.UserRepository
	now      func() time.Time
	logger   zerolog.Logger
}

func NewSessionAuth(
	sessionName string,
	sessions repository.SessionRepository,
	users repository.UserRepository,
	now func() time.Time,
	logger zerolog.Logger,
) *SessionAuth {
	if now == nil {
		now = time.Now
	}
	return &SessionAuth{
		Auth:     Auth{sessionName: sessionName},
		sessions: sessions,
		users:    users,
		now:      now,
		logger:   logger,
	}
}

// CreateSession starts a session for userID and returns its ID.
func (a *SessionAuth) CreateSession(ctx context.Context, userID uuid.UUID) (string, bool) {
	if userID == uuid.Nil {
		return "", false
	}

	session := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: a.now(),
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		a.logger.Error().Err(err).Msg("failed to create session")
		return "", false
	}
	return session.ID, true
}

// UserIDForSessionID returns the owner of a live session.
func (a *SessionAuth) UserIDForSessionID(ctx context.Context, sessionID string) (uuid.UUID, bool) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return uuid.Nil, false
	}

	session, err := a.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, ErrSessionExpired) {
			a.logger.Warn().Err(err).Msg("session lookup failed")
		}
		return uuid.Nil, false
	}
	return session.UserID, true
}

func (a *SessionAuth) Credentials(c *fiber.Ctx) (string, bool) {
	return a.SessionCookie(c)
}

func (a *SessionAuth) CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	sessionID, ok := a.SessionCookie(c)
	if !ok {
		return nil, false
	}
	ctx := c.UserContext()
	userID, ok := a.UserIDForSessionID(ctx, sessionID)
	if !ok {
		return nil, false
	}
	return a.lookupUser(ctx, userID)
}

// DestroySession ends the session named by the request cookie. It reports
// false when there is nothing live to destroy or the store refuses.
func (a *SessionAuth) DestroySession(c *fiber.Ctx) bool {
	sessionID, ok := a.SessionCookie(c)
	if !ok {
		return false
	}
	ctx := c.UserContext()
	if _, ok := a.UserIDForSessionID(ctx, sessionID); !ok {
		return false
	}

	if err := a.sessions.Delete(ctx, sessionID); err != nil {
		a.logger.Error().Err(err).Msg("failed to destroy session")
		return false
	}
	return true
}

func (a *SessionAuth) lookupUser(ctx context.Context, id uuid.UUID) (*domain.User, bool) {
	user, err := a.users.FindBy(ctx, repository.Attributes{"id": id})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			a.logger.Warn().Err(err).Msg("user lookup failed")
		}
		return nil, false
	}
	return user, true
}
