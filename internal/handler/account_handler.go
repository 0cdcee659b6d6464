package handler

import (
	"errors"

	"github.com/andressep95/session-auth/internal/service"
	"github.com/andressep95/session-auth/pkg/validator"
	"github.com/gofiber/fiber/v2"
)

// AccountCookie carries the session ID of the account routes.
const AccountCookie = "session_id"

// AccountHandler serves registration, login sessions and password reset
// backed by AuthService.
type AccountHandler struct {
	authService *service.AuthService
	validator   *validator.Validator
}

func NewAccountHandler(authService *service.AuthService, v *validator.Validator) *AccountHandler {
	return &AccountHandler{authService: authService, validator: v}
}

// GET /
func (h *AccountHandler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Bienvenue"})
}

// Register creates a user.
// POST /users
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req service.CredentialsRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	user, err := h.authService.RegisterUser(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, service.ErrUserAlreadyExists) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "email already registered",
		})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"email": user.Email, "message": "user created"})
}

// Login opens a session.
// POST /sessions
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var req service.CredentialsRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	if !h.authService.ValidLogin(ctx, req.Email, req.Password) {
		return fiber.ErrUnauthorized
	}

	sessionID, err := h.authService.CreateSession(ctx, req.Email)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{Name: AccountCookie, Value: sessionID, Path: "/", HTTPOnly: true})
	return c.JSON(fiber.Map{"email": req.Email, "message": "logged in"})
}

// Logout closes the session and redirects home.
// DELETE /sessions
func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := h.authService.GetUserFromSessionID(ctx, c.Cookies(AccountCookie))
	if err != nil {
		return h.forbidden(err)
	}
	if err := h.authService.DestroySession(ctx, user.ID); err != nil {
		return h.forbidden(err)
	}

	c.ClearCookie(AccountCookie)
	return c.Redirect("/", fiber.StatusFound)
}

// Profile returns the email of the session owner.
// GET /profile
func (h *AccountHandler) Profile(c *fiber.Ctx) error {
	user, err := h.authService.GetUserFromSessionID(c.UserContext(), c.Cookies(AccountCookie))
	if err != nil {
		return h.forbidden(err)
	}
	return c.JSON(fiber.Map{"email": user.Email})
}

// GetResetPasswordToken issues a reset token.
// POST /reset_password
func (h *AccountHandler) GetResetPasswordToken(c *fiber.Ctx) error {
	var req service.ResetTokenRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	token, err := h.authService.GetResetPasswordToken(c.UserContext(), req.Email)
	if err != nil {
		return h.forbidden(err)
	}
	return c.JSON(fiber.Map{"email": req.Email, "reset_token": token})
}

// UpdatePassword consumes a reset token.
// PUT /reset_password
func (h *AccountHandler) UpdatePassword(c *fiber.Ctx) error {
	var req service.UpdatePasswordRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.UpdatePassword(c.UserContext(), req.ResetToken, req.NewPassword); err != nil {
		return h.forbidden(err)
	}
	return c.JSON(fiber.Map{"email": req.Email, "message": "Password updated"})
}

func (h *AccountHandler) bind(c *fiber.Ctx, dst any) error {
	if err := bindForm(c, dst); err != nil {
		return err
	}
	if err := h.validator.Validate(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}
	return nil
}

// forbidden maps a missing user to 403 and passes other errors through.
func (h *AccountHandler) forbidden(err error) error {
	if errors.Is(err, service.ErrUserNotFound) {
		return fiber.ErrForbidden
	}
	return err
}
