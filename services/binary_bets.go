package services

import (
	"log"

	"matchday-bets/middleware"
	"matchday-bets/models"
	"matchday-bets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type binaryTeamIn struct {
	ID utils.OptString `json:"id"`
}

type createBinaryBetIn struct {
	GroupID  string        `json:"group_id"`
	Index    int           `json:"index"`
	IsOneWon *bool         `json:"is_one_won"`
	Team1    *binaryTeamIn `json:"team1"`
	Team2    *binaryTeamIn `json:"team2"`
}

type modifyBinaryBetIn struct {
	IsOneWon utils.OptBool `json:"is_one_won"`
	Team1    *binaryTeamIn `json:"team1"`
	Team2    *binaryTeamIn `json:"team2"`
}

func (s *BetService) loadBinaryBet(tx *gorm.DB, betID, userID string) (*models.BinaryBet, error) {
	var bet models.BinaryBet
	err := tx.Preload("Match").Preload("Match.Group").Preload("Match.Group.Phase").
		Preload("Match.Team1").Preload("Match.Team2").
		Where("id = ? AND user_id = ?", betID, userID).
		First(&bet).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func binaryBetResponse(bet *models.BinaryBet, locked bool, lang string) BinaryBetResponse {
	return BinaryBetResponse{
		Phase:     phaseOut(&bet.Match.Group.Phase, lang),
		Group:     groupOut(&bet.Match.Group, lang, false),
		BinaryBet: binaryBetOut(bet, locked, lang, false),
	}
}

func (s *BetService) GetBinaryBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	betID := c.Params("bet_id")

	bet, err := s.loadBinaryBet(s.DB, betID, user.ID)
	if err != nil {
		return utils.Fail(c, fiber.StatusNotFound, betNotFoundMessage(betID))
	}

	return utils.OK(c, fiber.StatusOK, binaryBetResponse(bet, IsLocked(user, s.Settings.LockDatetime), lang))
}

func (s *BetService) CreateBinaryBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)

	if IsLocked(user, s.Settings.LockDatetime) {
		return utils.Fail(c, fiber.StatusUnauthorized, lockedBinaryBetMessage)
	}

	var in createBinaryBetIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	var group models.Group
	if err := s.DB.First(&group, "id = ?", in.GroupID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, groupNotFoundMessage(in.GroupID))
	}

	match := models.Match{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		GroupID: group.ID,
		Index:   in.Index,
	}
	for _, slot := range []struct {
		in   *binaryTeamIn
		team **string
	}{{in.Team1, &match.Team1ID}, {in.Team2, &match.Team2ID}} {
		if slot.in == nil || !slot.in.ID.Set || slot.in.ID.Value == nil {
			continue
		}
		team, status, msg := s.resolveTeam(*slot.in.ID.Value)
		if status != 0 {
			return utils.Fail(c, status, msg)
		}
		*slot.team = &team.ID
	}

	bet := models.BinaryBet{
		ID:       uuid.NewString(),
		MatchID:  match.ID,
		UserID:   user.ID,
		IsOneWon: in.IsOneWon,
	}

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		if err := tx.Create(&match).Error; err != nil {
			return err
		}
		return tx.Create(&bet).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return utils.Fail(c, fiber.StatusConflict, betAlreadyExistsMessage(group.ID, in.Index))
		}
		log.Printf("[BETS] binary bet creation failed for %s: %v", user.Name, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	created, err := s.loadBinaryBet(s.DB, bet.ID, user.ID)
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	return utils.OK(c, fiber.StatusCreated, binaryBetResponse(created, false, lang))
}

func (s *BetService) ModifyBinaryBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	betID := c.Params("bet_id")

	if IsLocked(user, s.Settings.LockDatetime) {
		return utils.Fail(c, fiber.StatusUnauthorized, lockedBinaryBetMessage)
	}

	var in modifyBinaryBetIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}

	var failStatus int
	var failMessage interface{}
	var result BinaryBetResponse

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		failStatus, failMessage = 0, nil

		var bet models.BinaryBet
		err := forUpdate(tx).Where("id = ? AND user_id = ?", betID, user.ID).First(&bet).Error
		if err != nil {
			failStatus, failMessage = fiber.StatusNotFound, betNotFoundMessage(betID)
			return nil
		}
		var match models.Match
		if err := tx.First(&match, "id = ?", bet.MatchID).Error; err != nil {
			return err
		}

		teamChanged := false
		for _, slot := range []struct {
			in   *binaryTeamIn
			team **string
		}{{in.Team1, &match.Team1ID}, {in.Team2, &match.Team2ID}} {
			if slot.in == nil || !slot.in.ID.Set {
				continue
			}
			if slot.in.ID.Value == nil {
				*slot.team = nil
				teamChanged = true
				continue
			}
			team, status, msg := s.resolveTeam(*slot.in.ID.Value)
			if status != 0 {
				failStatus, failMessage = status, msg
				return nil
			}
			if *slot.team == nil || **slot.team != team.ID {
				*slot.team = &team.ID
				teamChanged = true
			}
		}

		if teamChanged {
			if err := tx.Model(&match).
				Updates(map[string]interface{}{"team1_id": match.Team1ID, "team2_id": match.Team2ID}).Error; err != nil {
				return err
			}
		}

		if in.IsOneWon.Set {
			bet.IsOneWon = in.IsOneWon.Value
			if err := tx.Save(&bet).Error; err != nil {
				return err
			}
		}

		loaded, err := s.loadBinaryBet(tx, bet.ID, user.ID)
		if err != nil {
			return err
		}
		result = binaryBetResponse(loaded, false, lang)
		return nil
	})
	if err != nil {
		log.Printf("[BETS] binary bet modification failed for %s: %v", user.Name, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}
	if failStatus != 0 {
		return utils.Fail(c, failStatus, failMessage)
	}

	return utils.OK(c, fiber.StatusOK, result)
}

func (s *BetService) DeleteBinaryBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	betID := c.Params("bet_id")

	if IsLocked(user, s.Settings.LockDatetime) {
		return utils.Fail(c, fiber.StatusUnauthorized, lockedBinaryBetMessage)
	}

	var failStatus int
	var failMessage interface{}
	var result BinaryBetResponse

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		failStatus, failMessage = 0, nil

		bet, err := s.loadBinaryBet(tx, betID, user.ID)
		if err != nil {
			failStatus, failMessage = fiber.StatusNotFound, betNotFoundMessage(betID)
			return nil
		}

		result = binaryBetResponse(bet, false, lang)

		if err := tx.Delete(&models.BinaryBet{}, "id = ?", bet.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Match{}, "id = ?", bet.MatchID).Error
	})
	if err != nil {
		log.Printf("[BETS] binary bet deletion failed for %s: %v", user.Name, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}
	if failStatus != 0 {
		return utils.Fail(c, failStatus, failMessage)
	}

	return utils.OK(c, fiber.StatusOK, result)
}
