package middleware

import (
	"matchday-bets/models"
	"matchday-bets/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	invalidTokenMessage      = "Invalid token, authentication required"
	unauthorizedAdminMessage = "Unauthorized access to admin API"
)

// UserContext resolves the authenticated identity set by the gateway
// (X-User-ID) into a user record and attaches it to the request.
func UserContext(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-ID")
		if userID == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, invalidTokenMessage)
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return utils.Fail(c, fiber.StatusUnauthorized, invalidTokenMessage)
		}

		c.Locals("user", &user)
		return c.Next()
	}
}

// CurrentUser returns the user attached by UserContext.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

// RequireAdmin guards the admin-only operations.
func RequireAdmin(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil || !user.IsAdmin() {
		return utils.Fail(c, fiber.StatusUnauthorized, unauthorizedAdminMessage)
	}
	return c.Next()
}
