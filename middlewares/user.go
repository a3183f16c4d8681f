package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"walletgw/helpers"
)

// UserAuth guards the operator-facing endpoints with a shared API key.
func UserAuth(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get("X-Api-Key")
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(got), []byte(apiKey)) != 1 {
			return helpers.JSONError(c, "INVALID_API_KEY")
		}
		return c.Next()
	}
}
