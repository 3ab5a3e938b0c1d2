package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/utils"
)

// Locals keys set by JWTMiddleware.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
)

func JWTMiddleware(j *utils.JWT) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		claims, err := j.ParseJWTToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalEmail, claims.Email)
		return c.Next()
	}
}

// UserID returns the subject stored by JWTMiddleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
