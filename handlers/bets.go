package handlers

import (
	"matchday-bets/middleware"
	"matchday-bets/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupBetRoutes(app *fiber.App, db *gorm.DB, betService *services.BetService) {
	secured := app.Group("/", middleware.UserContext(db))

	// Read surface
	secured.Get("/bets", betService.GetAllBets)
	secured.Get("/bets/phases/:phase_code", betService.GetBetsByPhase)
	secured.Get("/bets/groups/rank/:group_code", betService.GetGroupRank)
	secured.Get("/bets/groups/:group_code", betService.GetBetsByGroup)

	// Score bets
	secured.Post("/score_bets", betService.CreateScoreBet)
	secured.Get("/score_bets/:bet_id", betService.GetScoreBet)
	secured.Patch("/score_bets/:bet_id", betService.ModifyScoreBet)
	secured.Delete("/score_bets/:bet_id", betService.DeleteScoreBet)

	// Binary bets
	secured.Post("/binary_bets", betService.CreateBinaryBet)
	secured.Get("/binary_bets/:bet_id", betService.GetBinaryBet)
	secured.Patch("/binary_bets/:bet_id", betService.ModifyBinaryBet)
	secured.Delete("/binary_bets/:bet_id", betService.DeleteBinaryBet)
}
