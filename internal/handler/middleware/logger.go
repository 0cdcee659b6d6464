package middleware

import (
	"strings"
	"time"

	"github.com/andressep95/session-auth/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// LoggerMiddleware logs each request and makes a request scoped logger
// available through logging.FromContext(c.UserContext()).
func LoggerMiddleware(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqLogger := logger.With().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Logger()
		c.SetUserContext(logging.WithLogger(c.UserContext(), reqLogger))

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}

		event := reqLogger.Info()
		if status >= fiber.StatusInternalServerError {
			event = reqLogger.Error()
		}
		if q := string(c.Request().URI().QueryString()); q != "" {
			event = event.Str("query", redactQuery(q))
		}
		event.
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request completed")

		return err
	}
}

func redactQuery(q string) string {
	masked := logging.FilterDatum(logging.PIIFields, logging.Redaction, q+"&", "&")
	return strings.TrimSuffix(masked, "&")
}
