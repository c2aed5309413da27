package handlers

import (
	"matchday-bets/middleware"
	"matchday-bets/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupCatalogRoutes(app *fiber.App, db *gorm.DB, catalogService *services.CatalogService) {
	// Catalog reads carry no user context, only the gateway token.
	app.Get("/teams", catalogService.GetTeams)
	app.Get("/teams/:team_id", catalogService.GetTeam)
	app.Get("/phases", catalogService.GetPhases)
	app.Get("/phases/:phase_code", catalogService.GetPhase)
	app.Get("/groups", catalogService.GetGroups)
	// Registered before /groups/:group_code so "phases" is not read as a code.
	app.Get("/groups/phases/:phase_code", catalogService.GetGroupsByPhase)
	app.Get("/groups/:group_code", catalogService.GetGroup)

	secured := app.Group("/", middleware.UserContext(db))

	secured.Post("/teams/:team_id/flag", middleware.RequireAdmin, catalogService.UploadTeamFlag)
}
