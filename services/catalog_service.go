package services

import (
	"fmt"
	"log"
	"path"

	"matchday-bets/config"
	"matchday-bets/models"
	"matchday-bets/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CatalogService struct {
	DB       *gorm.DB
	Settings *config.Settings
}

func NewCatalogService(db *gorm.DB, settings *config.Settings) *CatalogService {
	return &CatalogService{DB: db, Settings: settings}
}

type teamsOut struct {
	Teams []TeamOut `json:"teams"`
}

type singleTeamOut struct {
	Team TeamOut `json:"team"`
}

type phasesOut struct {
	Phases []PhaseOut `json:"phases"`
}

type singlePhaseOut struct {
	Phase PhaseOut `json:"phase"`
}

type groupsOut struct {
	Groups []GroupOut `json:"groups"`
}

type singleGroupOut struct {
	Phase PhaseOut `json:"phase"`
	Group GroupOut `json:"group"`
}

type groupsByPhaseOut struct {
	Phase  PhaseOut   `json:"phase"`
	Groups []GroupOut `json:"groups"`
}

func (s *CatalogService) GetTeams(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)

	var teams []models.Team
	if err := s.DB.Order("code").Find(&teams).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	out := teamsOut{Teams: make([]TeamOut, 0, len(teams))}
	for i := range teams {
		out.Teams = append(out.Teams, teamOut(&teams[i], lang))
	}

	return utils.OK(c, fiber.StatusOK, out)
}

// GetTeam resolves :team_id as either a uuid or a team code.
func (s *CatalogService) GetTeam(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)
	teamID := c.Params("team_id")

	var team models.Team
	switch {
	case uuid.Validate(teamID) == nil:
		if err := s.DB.First(&team, "id = ?", teamID).Error; err != nil {
			return utils.Fail(c, fiber.StatusNotFound, teamNotFoundMessage(teamID))
		}
	case teamCodeShape.MatchString(teamID):
		if err := s.DB.First(&team, "code = ?", teamID).Error; err != nil {
			return utils.Fail(c, fiber.StatusNotFound, teamNotFoundMessage(teamID))
		}
	default:
		return utils.Fail(c, fiber.StatusBadRequest, invalidTeamIDMessage(teamID))
	}

	return utils.OK(c, fiber.StatusOK, singleTeamOut{Team: teamOut(&team, lang)})
}

func (s *CatalogService) GetPhases(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)

	var phases []models.Phase
	if err := s.DB.Order("\"index\"").Find(&phases).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	out := phasesOut{Phases: make([]PhaseOut, 0, len(phases))}
	for i := range phases {
		out.Phases = append(out.Phases, phaseOut(&phases[i], lang))
	}

	return utils.OK(c, fiber.StatusOK, out)
}

func (s *CatalogService) GetPhase(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)
	phaseCode := c.Params("phase_code")

	var phase models.Phase
	if err := s.DB.First(&phase, "code = ?", phaseCode).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, phaseNotFoundMessage(phaseCode))
	}

	return utils.OK(c, fiber.StatusOK, singlePhaseOut{Phase: phaseOut(&phase, lang)})
}

func (s *CatalogService) GetGroups(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)

	var groups []models.Group
	if err := s.DB.Order("\"index\"").Find(&groups).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	out := groupsOut{Groups: make([]GroupOut, 0, len(groups))}
	for i := range groups {
		out.Groups = append(out.Groups, groupOut(&groups[i], lang, true))
	}

	return utils.OK(c, fiber.StatusOK, out)
}

func (s *CatalogService) GetGroup(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)
	groupCode := c.Params("group_code")

	var group models.Group
	if err := s.DB.Preload("Phase").First(&group, "code = ?", groupCode).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, groupNotFoundMessage(groupCode))
	}

	return utils.OK(c, fiber.StatusOK, singleGroupOut{
		Phase: phaseOut(&group.Phase, lang),
		Group: groupOut(&group, lang, false),
	})
}

func (s *CatalogService) GetGroupsByPhase(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)
	phaseCode := c.Params("phase_code")

	var phase models.Phase
	if err := s.DB.First(&phase, "code = ?", phaseCode).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, phaseNotFoundMessage(phaseCode))
	}

	var groups []models.Group
	if err := s.DB.Where("phase_id = ?", phase.ID).Order("\"index\"").Find(&groups).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	out := groupsByPhaseOut{Phase: phaseOut(&phase, lang)}
	for i := range groups {
		out.Groups = append(out.Groups, groupOut(&groups[i], lang, true))
	}

	return utils.OK(c, fiber.StatusOK, out)
}

// UploadTeamFlag stores a new flag image for a team and rewrites its flag URL.
// Admin only.
func (s *CatalogService) UploadTeamFlag(c *fiber.Ctx) error {
	lang := utils.RequestLang(c)
	teamID := c.Params("team_id")

	if !utils.FlagStorageEnabled() {
		return utils.Fail(c, fiber.StatusServiceUnavailable, "Flag storage is not configured")
	}

	var team models.Team
	if err := s.DB.First(&team, "id = ?", teamID).Error; err != nil {
		return utils.Fail(c, fiber.StatusNotFound, teamNotFoundMessage(teamID))
	}

	fileHeader, err := c.FormFile("flag")
	if err != nil {
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "flag file is required")
	}

	ext := path.Ext(fileHeader.Filename)
	key := fmt.Sprintf("flags/%s-%s%s", slug.Make(team.Description("en")), team.ID, ext)

	url, err := utils.UploadFlag(fileHeader, key)
	if err != nil {
		log.Printf("[CATALOG] flag upload failed for team %s: %v", team.Code, err)
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}

	if err := s.DB.Model(&team).Update("flag_url", url).Error; err != nil {
		return utils.Fail(c, fiber.StatusServiceUnavailable, serviceUnavailableMessage)
	}
	team.FlagURL = url

	log.Printf("[CATALOG] flag updated for team %s", team.Code)

	return utils.OK(c, fiber.StatusOK, singleTeamOut{Team: teamOut(&team, lang)})
}
