package utils

import (
	"github.com/gofiber/fiber/v2"
)

// FieldError is one entry of a validation failure description.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// OK wraps a payload in the success envelope.
func OK(c *fiber.Ctx, status int, result interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":     true,
		"result": result,
	})
}

// Fail wraps a description in the failure envelope. The description is either
// a string or a list of FieldError.
func Fail(c *fiber.Ctx, status int, description interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"ok":          false,
		"error_code":  status,
		"description": description,
	})
}
