package handler

import (
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/gofiber/fiber/v2"
)

type IndexHandler struct {
	users repository.UserRepository
}

func NewIndexHandler(users repository.UserRepository) *IndexHandler {
	return &IndexHandler{users: users}
}

// Status reports that the API is up.
// GET /api/v1/status
func (h *IndexHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "OK"})
}

// Stats returns the number of registered users.
// GET /api/v1/stats
func (h *IndexHandler) Stats(c *fiber.Ctx) error {
	users, err := h.users.Search(c.UserContext(), repository.Attributes{})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"users": len(users)})
}

// GET /api/v1/unauthorized
func (h *IndexHandler) Unauthorized(c *fiber.Ctx) error {
	return fiber.ErrUnauthorized
}

// GET /api/v1/forbidden
func (h *IndexHandler) Forbidden(c *fiber.Ctx) error {
	return fiber.ErrForbidden
}
