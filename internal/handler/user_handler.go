package handler

import (
	"errors"

	"github.com/andressep95/session-auth/internal/domain"
	"github.com/andressep95/session-auth/internal/handler/middleware"
	"github.com/andressep95/session-auth/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type UserHandler struct {
	users repository.UserRepository
}

func NewUserHandler(users repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// List returns every user.
// GET /api/v1/users
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.users.Search(c.UserContext(), repository.Attributes{})
	if err != nil {
		return err
	}

	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToJSON())
	}
	return c.JSON(out)
}

// Get returns one user. The id "me" names the authenticated user.
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "me" {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return fiber.ErrNotFound
		}
		return c.JSON(user.ToJSON())
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return fiber.ErrNotFound
	}
	user, err := h.users.FindBy(c.UserContext(), repository.Attributes{"id": userID})
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.JSON(user.ToJSON())
}

func userJSON(u *domain.User) fiber.Map {
	return fiber.Map(u.ToJSON())
}
