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

// Rule identifiers are stable across deployments so that frontends can hold
// onto them.
const (
	KnockoutRuleID = "492345de-8d4a-45b6-8b94-d219f2b0c3e9"
	ScoringRuleID  = "62d46542-8cf1-4a3b-af77-a5086f10ac59"
)

type RuleService struct {
	DB       *gorm.DB
	Settings *config.Settings
}

func NewRuleService(db *gorm.DB, settings *config.Settings) *RuleService {
	return &RuleService{DB: db, Settings: settings}
}

// ExecuteRule runs the computation rule identified by the url parameter for
// the calling user. The scoring rule is restricted to the admin.
func (s *RuleService) ExecuteRule(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	ruleID := c.Params("rule_id")

	switch ruleID {
	case KnockoutRuleID:
		if s.Settings.Knockout == nil {
			return utils.Fail(c, fiber.StatusNotFound, ruleNotFoundMessage(ruleID))
		}
		status, message, err := ComputeKnockoutFromGroupRank(s.DB, user, s.Settings.Knockout)
		if err != nil {
			log.Printf("[RULES] knockout computation failed for %s: %v", user.Name, err)
			return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
		}
		if status != fiber.StatusOK {
			return utils.Fail(c, status, message)
		}
		return utils.OK(c, fiber.StatusOK, "")

	case ScoringRuleID:
		if !user.IsAdmin() {
			return utils.Fail(c, fiber.StatusUnauthorized, unauthorizedAdminMessage)
		}
		err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
			// Lock the admin row so concurrent scoring runs serialise.
			var admin models.User
			if err := forUpdate(tx).First(&admin, "id = ?", user.ID).Error; err != nil {
				return err
			}
			return ComputePoints(tx, &admin, s.Settings.Scoring)
		})
		if err != nil {
			log.Printf("[RULES] point computation failed: %v", err)
			return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
		}
		return utils.OK(c, fiber.StatusOK, "")

	default:
		return utils.Fail(c, fiber.StatusNotFound, ruleNotFoundMessage(ruleID))
	}
}
