package handler

import (
	"errors"

	"github.com/andressep95/session-auth/internal/logging"
	"github.com/gofiber/fiber/v2"
)

var statusMessages = map[int]string{
	fiber.StatusUnauthorized: "Unauthorized",
	fiber.StatusForbidden:    "Forbidden",
	fiber.StatusNotFound:     "Not found",
}

// ErrorHandler renders errors returned by handlers as {"error": message}.
// Unexpected errors are logged and reported as 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		logger := logging.FromContext(c.UserContext())
		logger.Error().Err(err).Msg("unhandled error")
	}

	if m, ok := statusMessages[code]; ok {
		message = m
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
