package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"walletgw/helpers"
)

// SboAuth validates the CompanyKey carried in every SBO callback body.
func SboAuth(companyKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body struct {
			CompanyKey string `json:"CompanyKey"`
		}

		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"AccountName":  "",
				"Balance":      0,
				"ErrorCode":    422,
				"ErrorMessage": "INVALID_JSON",
			})
		}

		if companyKey == "" || body.CompanyKey != companyKey {
			return helpers.SboBadKey(c)
		}

		return c.Next()
	}
}
