package middleware

import (
	"runtime/debug"

	"github.com/andressep95/session-auth/internal/logging"
	"github.com/gofiber/fiber/v2"
)

// RecoveryMiddleware turns a panic into a 500 response.
func RecoveryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger := logging.FromContext(c.UserContext())
				logger.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("recovered from panic")
				err = fiber.ErrInternalServerError
			}
		}()

		return c.Next()
	}
}
