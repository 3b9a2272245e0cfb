package handler

import (
	"github.com/gofiber/fiber/v2"
)

// writeError writes the wire-contract error body: a single "error" field
// with a short, machine-usable message. Internal details never reach the
// client; they are logged server-side where the failure occurred.
func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// ErrorHandler returns a Fiber global error handler that standardizes
// error responses for anything a route handler did not translate itself.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusNotFound:
			return writeError(c, status, "Not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "Method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "File too large")
		default:
			return writeError(c, status, "Internal error")
		}
	}
}
