package handler

import (
	"github.com/andressep95/session-auth/internal/auth"
	"github.com/andressep95/session-auth/internal/logging"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/andressep95/session-auth/internal/service"
	"github.com/andressep95/session-auth/pkg/hash"
	"github.com/andressep95/session-auth/pkg/validator"
	"github.com/gofiber/fiber/v2"
)

// SessionAuthHandler logs API clients in and out with a session cookie.
type SessionAuthHandler struct {
	sessions  auth.SessionAuthenticator
	users     repository.UserRepository
	validator *validator.Validator
}

func NewSessionAuthHandler(sessions auth.SessionAuthenticator, users repository.UserRepository, v *validator.Validator) *SessionAuthHandler {
	return &SessionAuthHandler{sessions: sessions, users: users, validator: v}
}

// Login starts a session for valid credentials.
// POST /api/v1/auth_session/login
func (h *SessionAuthHandler) Login(c *fiber.Ctx) error {
	var req service.CredentialsRequest
	if err := bindForm(c, &req); err != nil {
		return err
	}
	if err := h.validator.Validate(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}

	ctx := c.UserContext()
	users, err := h.users.Search(ctx, repository.Attributes{"email": req.Email})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no user found for this email",
		})
	}

	for _, user := range users {
		if !hash.Verify(user.HashedPassword, req.Password) {
			continue
		}

		sessionID, ok := h.sessions.CreateSession(ctx, user.ID)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "could not create session")
		}
		c.Cookie(&fiber.Cookie{
			Name:     h.sessions.SessionName(),
			Value:    sessionID,
			Path:     "/",
			HTTPOnly: true,
		})
		logger := logging.FromContext(ctx)
		logger.Info().Str("user_id", user.ID.String()).Msg("session created")
		return c.JSON(userJSON(user))
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "wrong password",
	})
}

// Logout destroys the session named by the request cookie.
// DELETE /api/v1/auth_session/logout
func (h *SessionAuthHandler) Logout(c *fiber.Ctx) error {
	if !h.sessions.DestroySession(c) {
		return fiber.ErrNotFound
	}
	c.ClearCookie(h.sessions.SessionName())
	return c.JSON(fiber.Map{})
}
