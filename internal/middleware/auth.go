package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/parlor-chat/parlor/internal/utils"
)

const ClaimsKey = "claims"

// JWTAuth validates the bearer token and stores the claims in Locals.
func JWTAuth(jwt *utils.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization"})
		}
		claims, err := jwt.ParseAccess(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

// Claims returns the authenticated claims set by JWTAuth, or nil.
func Claims(c *fiber.Ctx) *utils.Claims {
	claims, _ := c.Locals(ClaimsKey).(*utils.Claims)
	return claims
}

// RequireAdmin rejects non-administrator tokens. The service layer
// re-checks against the stored profile, so a stale token cannot keep a
// demoted admin elevated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil || !claims.IsAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin only"})
		}
		return c.Next()
	}
}
