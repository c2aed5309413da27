package services

import (
	"log"

	"matchday-bets/config"
	"matchday-bets/middleware"
	"matchday-bets/models"
	"matchday-bets/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ResultService struct {
	DB       *gorm.DB
	Settings *config.Settings
}

func NewResultService(db *gorm.DB, settings *config.Settings) *ResultService {
	return &ResultService{DB: db, Settings: settings}
}

// ScoreBoard returns every player ordered by points, best first. The admin
// holds the official results and is not ranked.
func (s *ResultService) ScoreBoard(c *fiber.Ctx) error {
	var players []models.User
	err := s.DB.Where("name <> ?", models.AdminName).
		Order("points DESC").Order("name").Find(&players).Error
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	results := make([]UserResult, 0, len(players))
	for i := range players {
		result := userResult(&players[i])
		result.Rank = i + 1
		results = append(results, result)
	}

	return utils.OK(c, fiber.StatusOK, results)
}

// Results returns the calling player's counters and rank.
func (s *ResultService) Results(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.IsAdmin() {
		return utils.Fail(c, fiber.StatusUnauthorized, noResultsForAdminMessage)
	}

	var better int64
	err := s.DB.Model(&models.User{}).
		Where("name <> ? AND points > ?", models.AdminName, user.Points).
		Count(&better).Error
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	result := userResult(user)
	result.Rank = int(better) + 1

	return utils.OK(c, fiber.StatusOK, result)
}

type officialResultIn struct {
	GroupCode string        `json:"group_code"`
	Index     int           `json:"index"`
	Score1    *int          `json:"score1"`
	Score2    *int          `json:"score2"`
	IsOneWon  utils.OptBool `json:"is_one_won"`
}

type applyResultsOut struct {
	Updated int `json:"updated"`
}

// ApplyResults ingests official match outcomes into the admin's bets. The
// external importer scrapes the scores and posts them here as plain tuples, so
// the service never parses third-party markup itself. Admin only.
func (s *ResultService) ApplyResults(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var in []officialResultIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	var failStatus int
	var failMessage interface{}
	updated := 0

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		failStatus, failMessage = 0, nil
		updated = 0

		// Concurrent imports serialise on the admin row, like the scoring rule.
		var admin models.User
		if err := forUpdate(tx).First(&admin, "id = ?", user.ID).Error; err != nil {
			return err
		}

		groupsByCode := make(map[string]*models.Group)

		for _, entry := range in {
			group, ok := groupsByCode[entry.GroupCode]
			if !ok {
				var loaded models.Group
				if err := tx.First(&loaded, "code = ?", entry.GroupCode).Error; err != nil {
					failStatus, failMessage = fiber.StatusNotFound, groupNotFoundMessage(entry.GroupCode)
					return nil
				}
				group = &loaded
				groupsByCode[entry.GroupCode] = group
			}

			var match models.Match
			err := tx.Where("user_id = ? AND group_id = ? AND \"index\" = ?",
				user.ID, group.ID, entry.Index).First(&match).Error
			if err != nil {
				failStatus = fiber.StatusNotFound
				failMessage = officialMatchNotFoundMessage(entry.GroupCode, entry.Index)
				return nil
			}

			var scoreBet models.ScoreBet
			err = forUpdate(tx).First(&scoreBet, "match_id = ?", match.ID).Error
			switch err {
			case nil:
				scoreBet.Score1 = entry.Score1
				scoreBet.Score2 = entry.Score2
				if err := tx.Save(&scoreBet).Error; err != nil {
					return err
				}
				if err := MarkStale(tx, user.ID, match.Team1ID, match.Team2ID); err != nil {
					return err
				}
				updated++
				continue
			case gorm.ErrRecordNotFound:
			default:
				return err
			}

			if !entry.IsOneWon.Set {
				continue
			}
			var binaryBet models.BinaryBet
			err = forUpdate(tx).First(&binaryBet, "match_id = ?", match.ID).Error
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}
			binaryBet.IsOneWon = entry.IsOneWon.Value
			if err := tx.Save(&binaryBet).Error; err != nil {
				return err
			}
			updated++
		}

		return nil
	})
	if err != nil {
		log.Printf("[RESULTS] official results import failed: %v", err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}
	if failStatus != 0 {
		return utils.Fail(c, failStatus, failMessage)
	}

	log.Printf("[RESULTS] applied %d official results", updated)

	return utils.OK(c, fiber.StatusOK, applyResultsOut{Updated: updated})
}
