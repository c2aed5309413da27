package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"matchday-bets/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type seedPhase struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	DescriptionFr string `json:"description_fr"`
	DescriptionEn string `json:"description_en"`
	Index         int    `json:"index"`
}

type seedGroup struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	DescriptionFr string `json:"description_fr"`
	DescriptionEn string `json:"description_en"`
	Index         int    `json:"index"`
	PhaseCode     string `json:"phase_code"`
}

type seedTeam struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	DescriptionFr string `json:"description_fr"`
	DescriptionEn string `json:"description_en"`
}

type seedMatch struct {
	ID        string  `json:"id"`
	Index     int     `json:"index"`
	GroupCode string  `json:"group_code"`
	Team1Code *string `json:"team1_code"`
	Team2Code *string `json:"team2_code"`
	BetKind   string  `json:"bet_kind"`
}

func readSeedFile(dataFolder, name string, target interface{}) error {
	raw, err := os.ReadFile(filepath.Join(dataFolder, name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	return nil
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// LoadCatalog populates phases, groups, teams and match references from the
// seed files in the data folder. The load is skipped when the catalog is
// already present, so process restarts are safe.
func LoadCatalog(db *gorm.DB, dataFolder string) error {
	var phaseCount int64
	if err := db.Model(&models.Phase{}).Count(&phaseCount).Error; err != nil {
		return err
	}
	if phaseCount > 0 {
		return nil
	}

	var phases []seedPhase
	if err := readSeedFile(dataFolder, "phases.json", &phases); err != nil {
		return err
	}
	var groups []seedGroup
	if err := readSeedFile(dataFolder, "groups.json", &groups); err != nil {
		return err
	}
	var teams []seedTeam
	if err := readSeedFile(dataFolder, "teams.json", &teams); err != nil {
		return err
	}
	var matches []seedMatch
	if err := readSeedFile(dataFolder, "matches.json", &matches); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		phaseByCode := make(map[string]string, len(phases))
		for _, p := range phases {
			phase := models.Phase{
				ID:            orNewID(p.ID),
				Code:          p.Code,
				DescriptionFr: p.DescriptionFr,
				DescriptionEn: p.DescriptionEn,
				Index:         p.Index,
			}
			if err := tx.Create(&phase).Error; err != nil {
				return err
			}
			phaseByCode[phase.Code] = phase.ID
		}

		groupByCode := make(map[string]string, len(groups))
		for _, g := range groups {
			phaseID, ok := phaseByCode[g.PhaseCode]
			if !ok {
				return fmt.Errorf("groups.json: unknown phase_code %q", g.PhaseCode)
			}
			group := models.Group{
				ID:            orNewID(g.ID),
				Code:          g.Code,
				DescriptionFr: g.DescriptionFr,
				DescriptionEn: g.DescriptionEn,
				Index:         g.Index,
				PhaseID:       phaseID,
			}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			groupByCode[group.Code] = group.ID
		}

		teamByCode := make(map[string]string, len(teams))
		for _, t := range teams {
			team := models.Team{
				ID:            orNewID(t.ID),
				Code:          t.Code,
				DescriptionFr: t.DescriptionFr,
				DescriptionEn: t.DescriptionEn,
			}
			team.FlagURL = "/teams/" + team.ID + "/flag"
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			teamByCode[team.Code] = team.ID
		}

		resolveTeam := func(code *string) (*string, error) {
			if code == nil {
				return nil, nil
			}
			id, ok := teamByCode[*code]
			if !ok {
				return nil, fmt.Errorf("matches.json: unknown team code %q", *code)
			}
			return &id, nil
		}

		for _, m := range matches {
			groupID, ok := groupByCode[m.GroupCode]
			if !ok {
				return fmt.Errorf("matches.json: unknown group_code %q", m.GroupCode)
			}
			team1ID, err := resolveTeam(m.Team1Code)
			if err != nil {
				return err
			}
			team2ID, err := resolveTeam(m.Team2Code)
			if err != nil {
				return err
			}
			kind := models.BetKind(m.BetKind)
			if kind != models.BetKindScore && kind != models.BetKindBinary {
				return fmt.Errorf("matches.json: unknown bet_kind %q", m.BetKind)
			}
			ref := models.MatchReference{
				ID:      orNewID(m.ID),
				GroupID: groupID,
				Index:   m.Index,
				Team1ID: team1ID,
				Team2ID: team2ID,
				BetKind: kind,
			}
			if err := tx.Create(&ref).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
