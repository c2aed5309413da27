package handlers

import (
	"matchday-bets/middleware"
	"matchday-bets/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRuleRoutes(app *fiber.App, db *gorm.DB, ruleService *services.RuleService) {
	secured := app.Group("/", middleware.UserContext(db))

	secured.Post("/rules/:rule_id", ruleService.ExecuteRule)
}
