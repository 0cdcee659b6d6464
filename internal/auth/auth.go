// Package auth resolves the user behind a request, either from an HTTP Basic
// Authorization header or from a session cookie.
package auth

import (
	"context"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Authenticator is the capability every strategy provides to the request
// gate. Lookups never fail loudly: an unresolvable request yields ok=false.
type Authenticator interface {
	RequireAuth(path string, excludedPaths []string) bool
	// Credentials returns the raw credential the strategy reads from the
	// request: the Authorization header or the session cookie.
	Credentials(c *fiber.Ctx) (string, bool)
	CurrentUser(c *fiber.Ctx) (*domain.User, bool)
}

// SessionAuthenticator is implemented by strategies that issue sessions.
type SessionAuthenticator interface {
	Authenticator
	CreateSession(ctx context.Context, userID uuid.UUID) (string, bool)
	DestroySession(c *fiber.Ctx) bool
	SessionName() string
}

// Auth only gates paths. It reads the Authorization header but never
// resolves a user.
type Auth struct {
	sessionName string
}

func NewAuth(sessionName string) *Auth {
	return &Auth{sessionName: sessionName}
}

func (a *Auth) RequireAuth(path string, excludedPaths []string) bool {
	return RequireAuth(path, excludedPaths)
}

// AuthorizationHeader returns the Authorization header, if present.
func (a *Auth) AuthorizationHeader(c *fiber.Ctx) (string, bool) {
	h := c.Get(fiber.HeaderAuthorization)
	return h, h != ""
}

// SessionCookie returns the session ID cookie, if present.
func (a *Auth) SessionCookie(c *fiber.Ctx) (string, bool) {
	if a.sessionName == "" {
		return "", false
	}
	v := c.Cookies(a.sessionName)
	return v, v != ""
}

func (a *Auth) SessionName() string {
	return a.sessionName
}

func (a *Auth) Credentials(c *fiber.Ctx) (string, bool) {
	return a.AuthorizationHeader(c)
}

func (a *Auth) CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	return nil, false
}
