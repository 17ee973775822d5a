package middleware

import (
	"lms/database"
	"lms/models"

	"github.com/gofiber/fiber/v2"
)

// RequireRole returns a middleware that allows only users holding one of the
// given roles. The role is re-read from the database so a revoked role takes
// effect before the token expires.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var user models.User
		if err := database.Database.Db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Access Denied!", nil)
		}

		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}

		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
