package handlers

import (
	"matchday-bets/middleware"
	"matchday-bets/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupResultRoutes(app *fiber.App, db *gorm.DB, resultService *services.ResultService) {
	secured := app.Group("/", middleware.UserContext(db))

	secured.Get("/score_board", resultService.ScoreBoard)
	secured.Get("/results", resultService.Results)

	// Official results come from the external importer under the admin identity.
	secured.Post("/results", middleware.RequireAdmin, resultService.ApplyResults)
}
