package middleware

import (
	"strings"

	"github.com/MateiSirbu/warehouse-mgmt-system-backend/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// NewAuthMiddleware resolves the bearer token to a customer id and an
// employee capability flag. Token issuing lives elsewhere; this layer
// only verifies.
func NewAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: missed header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid header format"})
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid token"})
		}

		c.Locals("customerID", claims.CustomerID)
		c.Locals("isEmployee", claims.IsEmployee)
		return c.Next()
	}
}

// NewEmployeeOnlyMiddleware guards the privileged routes.
func NewEmployeeOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isEmployee, ok := c.Locals("isEmployee").(bool)
		if !ok || !isEmployee {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "employee scope required"})
		}

		return c.Next()
	}
}
