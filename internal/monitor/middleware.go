package monitor

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// apiKeyAuth guards the mutating endpoints (webhook registration) with a
// shared key, read from the X-API-Key header or an Authorization bearer
// token. It is scoped to /webhooks; the rest of the sidecar is read-only.
func apiKeyAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-API-Key")
		if key == "" {
			if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				key = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if key != apiKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "invalid or missing API key",
			})
		}
		return c.Next()
	}
}
