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

type scoreTeamIn struct {
	ID    utils.OptString `json:"id"`
	Score utils.OptInt    `json:"score"`
}

type createScoreBetIn struct {
	GroupID string       `json:"group_id"`
	Index   int          `json:"index"`
	Team1   *scoreTeamIn `json:"team1"`
	Team2   *scoreTeamIn `json:"team2"`
}

type modifyScoreBetIn struct {
	Team1 *scoreTeamIn `json:"team1"`
	Team2 *scoreTeamIn `json:"team2"`
}

func (s *BetService) loadScoreBet(tx *gorm.DB, betID, userID string) (*models.ScoreBet, error) {
	var bet models.ScoreBet
	err := tx.Preload("Match").Preload("Match.Group").Preload("Match.Group.Phase").
		Preload("Match.Team1").Preload("Match.Team2").
		Where("id = ? AND user_id = ?", betID, userID).
		First(&bet).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func scoreBetResponse(bet *models.ScoreBet, locked bool, lang string) ScoreBetResponse {
	return ScoreBetResponse{
		Phase:    phaseOut(&bet.Match.Group.Phase, lang),
		Group:    groupOut(&bet.Match.Group, lang, false),
		ScoreBet: scoreBetOut(bet, locked, lang, false),
	}
}

func validScore(score *int) bool {
	return score == nil || *score >= 0
}

func (s *BetService) GetScoreBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	betID := c.Params("bet_id")

	bet, err := s.loadScoreBet(s.DB, betID, user.ID)
	if err != nil {
		return utils.Fail(c, fiber.StatusNotFound, betNotFoundMessage(betID))
	}

	return utils.OK(c, fiber.StatusOK, scoreBetResponse(bet, IsLocked(user, s.Settings.LockDatetime), lang))
}

func (s *BetService) CreateScoreBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)

	if IsLocked(user, s.Settings.LockDatetime) {
		return utils.Fail(c, fiber.StatusUnauthorized, lockedScoreBetMessage)
	}

	var in createScoreBetIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if in.Team1 == nil || in.Team2 == nil || !in.Team1.ID.Set || !in.Team2.ID.Set ||
		in.Team1.ID.Value == nil || in.Team2.ID.Value == nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, []utils.FieldError{
			{Field: "team1.id", Error: "field required"},
			{Field: "team2.id", Error: "field required"},
		})
	}

	var group models.Group
	if err := s.DB.First(&group, "id = ?", in.GroupID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, groupNotFoundMessage(in.GroupID))
	}

	team1, status, msg := s.resolveTeam(*in.Team1.ID.Value)
	if status != 0 {
		return utils.Fail(c, status, msg)
	}
	team2, status, msg := s.resolveTeam(*in.Team2.ID.Value)
	if status != 0 {
		return utils.Fail(c, status, msg)
	}

	score1 := in.Team1.Score.Value
	score2 := in.Team2.Score.Value
	if !validScore(score1) || !validScore(score2) {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, []utils.FieldError{
			{Field: "score", Error: "score must be null or non negative"},
		})
	}

	bet := models.ScoreBet{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Score1: score1,
		Score2: score2,
	}
	match := models.Match{
		ID:      uuid.NewString(),
		UserID:  user.ID,
		GroupID: group.ID,
		Index:   in.Index,
		Team1ID: &team1.ID,
		Team2ID: &team2.ID,
	}
	bet.MatchID = match.ID

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		if err := tx.Create(&match).Error; err != nil {
			return err
		}
		if err := tx.Create(&bet).Error; err != nil {
			return err
		}
		return MarkStale(tx, user.ID, match.Team1ID, match.Team2ID)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return utils.Fail(c, fiber.StatusConflict, betAlreadyExistsMessage(group.ID, in.Index))
		}
		log.Printf("[BETS] score bet creation failed for %s: %v", user.Name, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	created, err := s.loadScoreBet(s.DB, bet.ID, user.ID)
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	return utils.OK(c, fiber.StatusCreated, scoreBetResponse(created, false, lang))
}

func (s *BetService) ModifyScoreBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	betID := c.Params("bet_id")

	if IsLocked(user, s.Settings.LockDatetime) {
		return utils.Fail(c, fiber.StatusUnauthorized, lockedScoreBetMessage)
	}

	var in modifyScoreBetIn
	if err := c.BodyParser(&in); err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if in.Team1 != nil && in.Team1.Score.Set && !validScore(in.Team1.Score.Value) ||
		in.Team2 != nil && in.Team2.Score.Set && !validScore(in.Team2.Score.Value) {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, []utils.FieldError{
			{Field: "score", Error: "score must be null or non negative"},
		})
	}

	var failStatus int
	var failMessage interface{}
	var result ScoreBetResponse

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		failStatus, failMessage = 0, nil

		var bet models.ScoreBet
		err := forUpdate(tx).Where("id = ? AND user_id = ?", betID, user.ID).First(&bet).Error
		if err != nil {
			failStatus, failMessage = fiber.StatusNotFound, betNotFoundMessage(betID)
			return nil
		}
		var match models.Match
		if err := tx.First(&match, "id = ?", bet.MatchID).Error; err != nil {
			return err
		}

		old1, old2 := bet.Score1, bet.Score2
		oldTeam1, oldTeam2 := match.Team1ID, match.Team2ID
		teamChanged := false

		for _, slot := range []struct {
			in   *scoreTeamIn
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

		new1, new2 := old1, old2
		if in.Team1 != nil && in.Team1.Score.Set {
			new1 = in.Team1.Score.Value
		}
		if in.Team2 != nil && in.Team2.Score.Set {
			new2 = in.Team2.Score.Value
		}

		scoreChanged := !sameScore(old1, new1) || !sameScore(old2, new2)

		if !teamChanged && !scoreChanged {
			loaded, err := s.loadScoreBet(tx, bet.ID, user.ID)
			if err != nil {
				return err
			}
			result = scoreBetResponse(loaded, false, lang)
			return nil
		}

		if teamChanged {
			if err := tx.Model(&match).
				Updates(map[string]interface{}{"team1_id": match.Team1ID, "team2_id": match.Team2ID}).Error; err != nil {
				return err
			}
		}

		bet.Score1, bet.Score2 = new1, new2
		if err := tx.Save(&bet).Error; err != nil {
			return err
		}

		if teamChanged {
			if err := MarkStale(tx, user.ID, oldTeam1, oldTeam2, match.Team1ID, match.Team2ID); err != nil {
				return err
			}
		} else if scoreChanged {
			if err := ApplyScoreChange(tx, user.ID, match.GroupID, match.Team1ID, match.Team2ID, old1, old2, new1, new2); err != nil {
				return err
			}
		}

		loaded, err := s.loadScoreBet(tx, bet.ID, user.ID)
		if err != nil {
			return err
		}
		result = scoreBetResponse(loaded, false, lang)
		return nil
	})
	if err != nil {
		log.Printf("[BETS] score bet modification failed for %s: %v", user.Name, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}
	if failStatus != 0 {
		return utils.Fail(c, failStatus, failMessage)
	}

	return utils.OK(c, fiber.StatusOK, result)
}

func (s *BetService) DeleteScoreBet(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	betID := c.Params("bet_id")

	if IsLocked(user, s.Settings.LockDatetime) {
		return utils.Fail(c, fiber.StatusUnauthorized, lockedScoreBetMessage)
	}

	var failStatus int
	var failMessage interface{}
	var result ScoreBetResponse

	err := withTransientRetry(s.DB, func(tx *gorm.DB) error {
		failStatus, failMessage = 0, nil

		bet, err := s.loadScoreBet(tx, betID, user.ID)
		if err != nil {
			failStatus, failMessage = fiber.StatusNotFound, betNotFoundMessage(betID)
			return nil
		}

		result = scoreBetResponse(bet, false, lang)

		if err := tx.Delete(&models.ScoreBet{}, "id = ?", bet.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Match{}, "id = ?", bet.MatchID).Error; err != nil {
			return err
		}
		return MarkStale(tx, user.ID, bet.Match.Team1ID, bet.Match.Team2ID)
	})
	if err != nil {
		log.Printf("[BETS] score bet deletion failed for %s: %v", user.Name, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}
	if failStatus != 0 {
		return utils.Fail(c, failStatus, failMessage)
	}

	return utils.OK(c, fiber.StatusOK, result)
}

func sameScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
