package services

import (
	"regexp"
	"sort"

	"matchday-bets/config"
	"matchday-bets/middleware"
	"matchday-bets/models"
	"matchday-bets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BetService struct {
	DB       *gorm.DB
	Settings *config.Settings
}

func NewBetService(db *gorm.DB, settings *config.Settings) *BetService {
	return &BetService{DB: db, Settings: settings}
}

type BetsByPhaseResponse struct {
	Phase      PhaseOut       `json:"phase"`
	Groups     []GroupOut     `json:"groups"`
	ScoreBets  []ScoreBetOut  `json:"score_bets"`
	BinaryBets []BinaryBetOut `json:"binary_bets"`
}

type BetsByGroupResponse struct {
	Phase      PhaseOut       `json:"phase"`
	Group      GroupOut       `json:"group"`
	ScoreBets  []ScoreBetOut  `json:"score_bets"`
	BinaryBets []BinaryBetOut `json:"binary_bets"`
}

type GroupRankResponse struct {
	Phase     PhaseOut               `json:"phase"`
	Group     GroupOut               `json:"group"`
	GroupRank []GroupRankPositionOut `json:"group_rank"`
}

// loadUserBets fetches a user's bets with teams preloaded, ordered by
// (group.index, match.index). A nil group filter loads everything.
func (s *BetService) loadUserBets(userID string, groupIDs []string) ([]models.ScoreBet, []models.BinaryBet, error) {
	var groups []models.Group
	if err := s.DB.Find(&groups).Error; err != nil {
		return nil, nil, err
	}
	groupIndex := make(map[string]int, len(groups))
	for _, g := range groups {
		groupIndex[g.ID] = g.Index
	}

	scoreQuery := s.DB.Preload("Match").Preload("Match.Team1").Preload("Match.Team2").
		Where("user_id = ?", userID)
	binaryQuery := s.DB.Preload("Match").Preload("Match.Team1").Preload("Match.Team2").
		Where("user_id = ?", userID)

	if groupIDs != nil {
		matchFilter := s.DB.Model(&models.Match{}).Select("id").
			Where("user_id = ? AND group_id IN ?", userID, groupIDs)
		scoreQuery = scoreQuery.Where("match_id IN (?)", matchFilter)
		binaryQuery = binaryQuery.Where("match_id IN (?)", matchFilter)
	}

	var scoreBets []models.ScoreBet
	if err := scoreQuery.Find(&scoreBets).Error; err != nil {
		return nil, nil, err
	}
	var binaryBets []models.BinaryBet
	if err := binaryQuery.Find(&binaryBets).Error; err != nil {
		return nil, nil, err
	}

	sort.SliceStable(scoreBets, func(i, j int) bool {
		a, b := &scoreBets[i].Match, &scoreBets[j].Match
		if groupIndex[a.GroupID] != groupIndex[b.GroupID] {
			return groupIndex[a.GroupID] < groupIndex[b.GroupID]
		}
		return a.Index < b.Index
	})
	sort.SliceStable(binaryBets, func(i, j int) bool {
		a, b := &binaryBets[i].Match, &binaryBets[j].Match
		if groupIndex[a.GroupID] != groupIndex[b.GroupID] {
			return groupIndex[a.GroupID] < groupIndex[b.GroupID]
		}
		return a.Index < b.Index
	})

	return scoreBets, binaryBets, nil
}

func (s *BetService) GetAllBets(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	locked := IsLocked(user, s.Settings.LockDatetime)

	var phases []models.Phase
	if err := s.DB.Order("\"index\"").Find(&phases).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}
	var groups []models.Group
	if err := s.DB.Order("\"index\"").Find(&groups).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	scoreBets, binaryBets, err := s.loadUserBets(user.ID, nil)
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	response := AllBetsResponse{
		Phases:     make([]PhaseOut, 0, len(phases)),
		Groups:     make([]GroupOut, 0, len(groups)),
		ScoreBets:  make([]ScoreBetOut, 0, len(scoreBets)),
		BinaryBets: make([]BinaryBetOut, 0, len(binaryBets)),
	}
	for i := range phases {
		response.Phases = append(response.Phases, phaseOut(&phases[i], lang))
	}
	for i := range groups {
		response.Groups = append(response.Groups, groupOut(&groups[i], lang, true))
	}
	for i := range scoreBets {
		response.ScoreBets = append(response.ScoreBets, scoreBetOut(&scoreBets[i], locked, lang, true))
	}
	for i := range binaryBets {
		response.BinaryBets = append(response.BinaryBets, binaryBetOut(&binaryBets[i], locked, lang, true))
	}

	return utils.OK(c, fiber.StatusOK, response)
}

func (s *BetService) GetBetsByPhase(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	locked := IsLocked(user, s.Settings.LockDatetime)
	phaseCode := c.Params("phase_code")

	var phase models.Phase
	if err := s.DB.Where("code = ?", phaseCode).First(&phase).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, phaseNotFoundMessage(phaseCode))
	}

	var groups []models.Group
	if err := s.DB.Where("phase_id = ?", phase.ID).Order("\"index\"").Find(&groups).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	groupIDs := make([]string, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}

	scoreBets, binaryBets, err := s.loadUserBets(user.ID, groupIDs)
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	response := BetsByPhaseResponse{Phase: phaseOut(&phase, lang)}
	for i := range groups {
		response.Groups = append(response.Groups, groupOut(&groups[i], lang, true))
	}
	for i := range scoreBets {
		response.ScoreBets = append(response.ScoreBets, scoreBetOut(&scoreBets[i], locked, lang, true))
	}
	for i := range binaryBets {
		response.BinaryBets = append(response.BinaryBets, binaryBetOut(&binaryBets[i], locked, lang, true))
	}

	return utils.OK(c, fiber.StatusOK, response)
}

func (s *BetService) GetBetsByGroup(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	locked := IsLocked(user, s.Settings.LockDatetime)
	groupCode := c.Params("group_code")

	var group models.Group
	if err := s.DB.Preload("Phase").Where("code = ?", groupCode).First(&group).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, groupNotFoundMessage(groupCode))
	}

	scoreBets, binaryBets, err := s.loadUserBets(user.ID, []string{group.ID})
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	response := BetsByGroupResponse{
		Phase: phaseOut(&group.Phase, lang),
		Group: groupOut(&group, lang, false),
	}
	for i := range scoreBets {
		response.ScoreBets = append(response.ScoreBets, scoreBetOut(&scoreBets[i], locked, lang, false))
	}
	for i := range binaryBets {
		response.BinaryBets = append(response.BinaryBets, binaryBetOut(&binaryBets[i], locked, lang, false))
	}

	return utils.OK(c, fiber.StatusOK, response)
}

func (s *BetService) GetGroupRank(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	lang := utils.RequestLang(c)
	groupCode := c.Params("group_code")

	var group models.Group
	if err := s.DB.Preload("Phase").Where("code = ?", groupCode).First(&group).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, groupNotFoundMessage(groupCode))
	}

	positions, err := LoadGroupRank(s.DB, user.ID, group.ID)
	if err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	return utils.OK(c, fiber.StatusOK, GroupRankResponse{
		Phase:     phaseOut(&group.Phase, lang),
		Group:     groupOut(&group, lang, false),
		GroupRank: groupRankOut(positions, lang),
	})
}

var teamCodeShape = regexp.MustCompile(`^[A-Za-z]{2,10}$`)

// resolveTeam accepts a team reference as either a uuid or an ISO style code.
// The returned status is zero on success.
func (s *BetService) resolveTeam(ref string) (*models.Team, int, string) {
	var team models.Team

	if uuid.Validate(ref) == nil {
		if err := s.DB.First(&team, "id = ?", ref).Error; err != nil {
			return nil, fiber.StatusNotFound, teamNotFoundMessage(ref)
		}
		return &team, 0, ""
	}

	if teamCodeShape.MatchString(ref) {
		if err := s.DB.First(&team, "code = ?", ref).Error; err != nil {
			return nil, fiber.StatusNotFound, teamNotFoundMessage(ref)
		}
		return &team, 0, ""
	}

	return nil, fiber.StatusBadRequest, invalidTeamIDMessage(ref)
}
