package middleware

import (
	"github.com/andressep95/session-auth/internal/auth"
	"github.com/andressep95/session-auth/internal/domain"
	"github.com/gofiber/fiber/v2"
)

const currentUserKey = "current_user"

// Gatekeeper rejects requests to protected paths: 401 without credentials,
// 403 when the credentials do not resolve to a user. A nil authenticator
// lets every request through.
func Gatekeeper(a auth.Authenticator, excludedPaths []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a == nil || !a.RequireAuth(c.Path(), excludedPaths) {
			return c.Next()
		}

		if _, ok := a.Credentials(c); !ok {
			return fiber.ErrUnauthorized
		}

		user, ok := a.CurrentUser(c)
		if !ok {
			return fiber.ErrForbidden
		}

		c.Locals(currentUserKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by Gatekeeper for this request.
func CurrentUser(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(currentUserKey).(*domain.User)
	return user, ok && user != nil
}
