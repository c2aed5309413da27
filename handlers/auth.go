package handlers

import (
	"matchday-bets/middleware"
	"matchday-bets/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB, authService *services.AuthService) {
	// Signup and login carry no user context, only the gateway token.
	app.Post("/users/signup", authService.Signup)
	app.Post("/users/login", authService.Login)

	secured := app.Group("/", middleware.UserContext(db))

	secured.Get("/users/current", authService.CurrentUser)

	// User administration
	secured.Patch("/users/:user_id", middleware.RequireAdmin, authService.ModifyUser)
	secured.Delete("/users/:user_id", middleware.RequireAdmin, authService.DeleteUser)
}
