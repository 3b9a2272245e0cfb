package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// bearerPrefix per RFC 6750.
const bearerPrefix = "Bearer "

// RequireAdmin is the access gate for ingestion: it grants only on an
// exact match of the presented bearer token against the configured
// admin secret.
//
// Behavior:
//   - Reads the Authorization header and strips the Bearer prefix.
//   - An absent, malformed, or mismatched credential is denied with
//     401 {"error":"Unauthorized"}; denial is never an internal error.
//   - The comparison is constant-time to avoid leaking the secret length
//     position-by-position.
func RequireAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		token := ""
		if strings.HasPrefix(auth, bearerPrefix) {
			token = auth[len(bearerPrefix):]
		}
		if token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1 {
			return c.Next()
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
}
