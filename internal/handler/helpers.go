package handler

import (
	"errors"

	"github.com/andressep95/session-auth/pkg/validator"
	"github.com/gofiber/fiber/v2"
)

// bindForm parses a form or JSON body into dst. An empty body leaves dst
// untouched so that validation reports the missing fields.
func bindForm(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// validationMessage returns the message of the first failed rule.
func validationMessage(err error) string {
	var errs validator.Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		return errs[0].Error()
	}
	return err.Error()
}
