package services

import (
	"sort"
	"strings"

	"matchday-bets/config"
	"matchday-bets/models"

	"gorm.io/gorm"
)

const thirdPlaceRank = 3

// ComputeKnockoutFromGroupRank fills the team slots of the target knockout
// group's matches from the user's current source-phase rankings. Matches whose
// source groups are incomplete are left untouched, so the operation can be run
// again as more bets come in. The returned status and message follow the
// envelope convention; err reports storage failures only.
func ComputeKnockoutFromGroupRank(db *gorm.DB, user *models.User, cfg *config.KnockoutRuleConfig) (int, interface{}, error) {
	var targetGroup models.Group
	if err := db.First(&targetGroup, "code = ?", cfg.ToGroup).Error; err != nil {
		return 404, groupNotFoundMessage(cfg.ToGroup), nil
	}

	var phase models.Phase
	if err := db.First(&phase, "code = ?", cfg.FromPhase).Error; err != nil {
		return 404, phaseNotFoundMessage(cfg.FromPhase), nil
	}

	var sourceGroups []models.Group
	if err := db.Where("phase_id = ?", phase.ID).Find(&sourceGroups).Error; err != nil {
		return 0, nil, err
	}

	rankings := make(map[string][]models.GroupPosition, len(sourceGroups))
	for _, group := range sourceGroups {
		positions, err := LoadGroupRank(db, user.ID, group.ID)
		if err != nil {
			return 0, nil, err
		}
		rankings[group.Code] = positions
	}

	thirdPlaceAssignment := map[int]string{}
	if cfg.ThirdPlaceLookup != nil && cfg.ThirdPlaceMatchup != nil {
		thirdPlaceAssignment = resolveThirdPlaceAssignment(rankings, cfg.ThirdPlaceLookup, cfg.ThirdPlaceMatchup)
	}

	err := withTransientRetry(db, func(tx *gorm.DB) error {
		for i, versus := range cfg.Versus {
			index := i + 1

			team1Dynamic := versus.Team1.Rank == thirdPlaceRank && versus.Team1.Group == ""
			team2Dynamic := versus.Team2.Rank == thirdPlaceRank && versus.Team2.Group == ""

			team1Group := versus.Team1.Group
			team2Group := versus.Team2.Group

			if team1Dynamic || team2Dynamic {
				resolved, ok := thirdPlaceAssignment[index]
				if !ok {
					continue
				}
				if team1Dynamic {
					team1Group = resolved
				}
				if team2Dynamic {
					team2Group = resolved
				}
			} else {
				ranking1, ok1 := rankings[team1Group]
				ranking2, ok2 := rankings[team2Group]
				if !ok1 || !ok2 || !GroupIsComplete(ranking1) || !GroupIsComplete(ranking2) {
					continue
				}
			}

			ranking1 := rankings[team1Group]
			ranking2 := rankings[team2Group]
			if versus.Team1.Rank > len(ranking1) || versus.Team2.Rank > len(ranking2) {
				continue
			}

			team1ID := ranking1[versus.Team1.Rank-1].TeamID
			team2ID := ranking2[versus.Team2.Rank-1].TeamID

			var match models.Match
			err := tx.Where("user_id = ? AND group_id = ? AND \"index\" = ?",
				user.ID, targetGroup.ID, index).First(&match).Error
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}

			var betCount int64
			if err := tx.Model(&models.BinaryBet{}).Where("match_id = ?", match.ID).Count(&betCount).Error; err != nil {
				return err
			}
			if betCount == 0 {
				continue
			}

			err = tx.Model(&match).
				Updates(map[string]interface{}{"team1_id": team1ID, "team2_id": team2ID}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	return 200, "", nil
}

// resolveThirdPlaceAssignment picks the best third-place teams across the
// source groups and maps each dynamic knockout match to the group whose third
// team it receives. Returns an empty map while any source group is incomplete.
func resolveThirdPlaceAssignment(
	rankings map[string][]models.GroupPosition,
	lookup map[string][]string,
	matchup []int,
) map[int]string {
	for _, ranking := range rankings {
		if !GroupIsComplete(ranking) {
			return map[int]string{}
		}
	}

	type thirdPlace struct {
		groupCode string
		position  *models.GroupPosition
	}
	var thirds []thirdPlace
	for code, ranking := range rankings {
		if len(ranking) >= thirdPlaceRank {
			thirds = append(thirds, thirdPlace{code, &ranking[thirdPlaceRank-1]})
		}
	}

	sort.SliceStable(thirds, func(i, j int) bool {
		a, b := thirds[i].position, thirds[j].position
		if a.Points() != b.Points() {
			return a.Points() > b.Points()
		}
		if a.GoalsDifference() != b.GoalsDifference() {
			return a.GoalsDifference() > b.GoalsDifference()
		}
		return a.GoalsFor > b.GoalsFor
	})

	qualified := len(thirds)
	if qualified > 8 {
		qualified = 8
	}
	codes := make([]string, 0, qualified)
	for _, third := range thirds[:qualified] {
		codes = append(codes, third.groupCode)
	}
	sort.Strings(codes)

	assignments, ok := lookup[strings.Join(codes, "")]
	if !ok || len(assignments) != len(matchup) {
		return map[int]string{}
	}

	assignment := make(map[int]string, len(matchup))
	for i, matchIndex := range matchup {
		// Lookup entries name the slot as "3X"; the group code is the suffix.
		assignment[matchIndex] = assignments[i][1:]
	}
	return assignment
}
