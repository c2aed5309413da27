package services

import (
	"matchday-bets/config"
	"matchday-bets/models"

	"gorm.io/gorm"
)

const groupStagePhaseCode = "GROUP"

// Knockout groups carrying the qualification bonuses, keyed by the number of
// teams left in the bracket.
const (
	quarterFinalGroupCode = "4"
	semiFinalGroupCode    = "2"
	finalGroupCode        = "1"
)

const (
	quarterFinalBonus = 30
	semiFinalBonus    = 60
	finalBonus        = 120
	winnerBonus       = 200
)

type scoreBetTally struct {
	numberCorrectResult int
	correctResultUsers  map[string]bool
	numberCorrectScore  int
	correctScoreUsers   map[string]bool
}

type groupRankTally struct {
	qualifiedTeamsGuess int
	firstQualifiedGuess int
}

// tallyScoreBets compares every player's score bets against the admin's
// official entries match by match, counting who found the correct result and
// who found the exact score.
func tallyScoreBets(db *gorm.DB, admin *models.User) ([]scoreBetTally, error) {
	var adminBets []models.ScoreBet
	err := db.Preload("Match").Where("user_id = ?", admin.ID).Find(&adminBets).Error
	if err != nil {
		return nil, err
	}

	var playerBets []models.ScoreBet
	err = db.Preload("Match").Where("user_id <> ?", admin.ID).Find(&playerBets).Error
	if err != nil {
		return nil, err
	}

	type matchKey struct {
		groupID string
		index   int
	}
	betsByMatch := make(map[matchKey][]*models.ScoreBet)
	for i := range playerBets {
		bet := &playerBets[i]
		key := matchKey{bet.Match.GroupID, bet.Match.Index}
		betsByMatch[key] = append(betsByMatch[key], bet)
	}

	tallies := make([]scoreBetTally, 0, len(adminBets))
	for i := range adminBets {
		official := &adminBets[i]
		tally := scoreBetTally{
			correctResultUsers: make(map[string]bool),
			correctScoreUsers:  make(map[string]bool),
		}

		for _, bet := range betsByMatch[matchKey{official.Match.GroupID, official.Match.Index}] {
			if bet.IsSameResult(official) {
				tally.numberCorrectResult++
				tally.correctResultUsers[bet.UserID] = true

				if bet.IsSameScore(official) {
					tally.numberCorrectScore++
					tally.correctScoreUsers[bet.UserID] = true
				}
			}
		}

		tallies = append(tallies, tally)
	}

	return tallies, nil
}

// tallyGroupRanks scores the qualified-teams guesses: for every complete group
// of the group stage, each player earns credit for the teams they placed in
// the admin's top two and for naming the same group winner.
func tallyGroupRanks(db *gorm.DB, admin *models.User, players []models.User) (map[string]*groupRankTally, error) {
	tallies := make(map[string]*groupRankTally)

	var phase models.Phase
	if err := db.First(&phase, "code = ?", groupStagePhaseCode).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return tallies, nil
		}
		return nil, err
	}

	var groups []models.Group
	if err := db.Where("phase_id = ?", phase.ID).Find(&groups).Error; err != nil {
		return nil, err
	}

	for _, group := range groups {
		adminRank, err := LoadGroupRank(db, admin.ID, group.ID)
		if err != nil {
			return nil, err
		}
		if !GroupIsComplete(adminRank) || len(adminRank) < 2 {
			continue
		}

		adminFirst := adminRank[0].TeamID
		adminSecond := adminRank[1].TeamID

		for i := range players {
			player := &players[i]
			if _, ok := tallies[player.ID]; !ok {
				tallies[player.ID] = &groupRankTally{}
			}

			playerRank, err := LoadGroupRank(db, player.ID, group.ID)
			if err != nil {
				return nil, err
			}
			if !GroupIsComplete(playerRank) || len(playerRank) < 2 {
				continue
			}

			playerFirst := playerRank[0].TeamID
			playerSecond := playerRank[1].TeamID

			for _, teamID := range []string{playerFirst, playerSecond} {
				if teamID == adminFirst || teamID == adminSecond {
					tallies[player.ID].qualifiedTeamsGuess++
				}
			}
			if playerFirst == adminFirst {
				tallies[player.ID].firstQualifiedGuess++
			}
		}
	}

	return tallies, nil
}

// teamsFromGroupCode returns the set of team ids a user placed in the given
// knockout group, taken from the binary-bet matches with both slots filled.
func teamsFromGroupCode(db *gorm.DB, userID, groupCode string) (map[string]bool, error) {
	teams := make(map[string]bool)

	var group models.Group
	if err := db.First(&group, "code = ?", groupCode).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return teams, nil
		}
		return nil, err
	}

	var matches []models.Match
	err := db.Where("user_id = ? AND group_id = ?", userID, group.ID).Find(&matches).Error
	if err != nil {
		return nil, err
	}

	for _, match := range matches {
		if match.Team1ID == nil || match.Team2ID == nil {
			continue
		}
		teams[*match.Team1ID] = true
		teams[*match.Team2ID] = true
	}

	return teams, nil
}

// winnerFromUser returns the team the user picked to win the final, empty when
// the final bet is unset.
func winnerFromUser(db *gorm.DB, userID string) (map[string]bool, error) {
	winner := make(map[string]bool)

	var group models.Group
	if err := db.First(&group, "code = ?", finalGroupCode).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return winner, nil
		}
		return nil, err
	}

	var match models.Match
	err := db.Where("user_id = ? AND group_id = ?", userID, group.ID).
		Order("\"index\"").First(&match).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return winner, nil
		}
		return nil, err
	}

	var bet models.BinaryBet
	if err := db.First(&bet, "match_id = ?", match.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return winner, nil
		}
		return nil, err
	}

	if bet.IsOneWon == nil || match.Team1ID == nil || match.Team2ID == nil {
		return winner, nil
	}
	if *bet.IsOneWon {
		winner[*match.Team1ID] = true
	} else {
		winner[*match.Team2ID] = true
	}
	return winner, nil
}

func intersectionSize(a, b map[string]bool) int {
	n := 0
	for key := range a {
		if b[key] {
			n++
		}
	}
	return n
}

// ComputePoints recomputes every player's counters and point total from the
// admin's official entries. Overwrites previous results, so reruns after new
// official scores always converge to the same totals.
func ComputePoints(db *gorm.DB, admin *models.User, cfg config.ScoringRuleConfig) error {
	tallies, err := tallyScoreBets(db, admin)
	if err != nil {
		return err
	}

	var players []models.User
	if err := db.Where("name <> ?", models.AdminName).Find(&players).Error; err != nil {
		return err
	}

	groupTallies, err := tallyGroupRanks(db, admin, players)
	if err != nil {
		return err
	}

	quarterFinalTeams, err := teamsFromGroupCode(db, admin.ID, quarterFinalGroupCode)
	if err != nil {
		return err
	}
	semiFinalTeams, err := teamsFromGroupCode(db, admin.ID, semiFinalGroupCode)
	if err != nil {
		return err
	}
	finalTeams, err := teamsFromGroupCode(db, admin.ID, finalGroupCode)
	if err != nil {
		return err
	}
	winner, err := winnerFromUser(db, admin.ID)
	if err != nil {
		return err
	}

	numberOfPlayers := len(players)

	for i := range players {
		player := &players[i]
		player.NumberMatchGuess = 0
		player.NumberScoreGuess = 0
		player.Points = 0

		for _, tally := range tallies {
			if tally.correctResultUsers[player.ID] {
				player.NumberMatchGuess++
				player.Points += betPoints(
					cfg.BaseCorrectResult, cfg.MultiplyingFactorCorrectResult,
					numberOfPlayers, tally.numberCorrectResult,
				)
			}
			if tally.correctScoreUsers[player.ID] {
				player.NumberScoreGuess++
				player.Points += betPoints(
					cfg.BaseCorrectScore, cfg.MultiplyingFactorCorrectScore,
					numberOfPlayers, tally.numberCorrectScore,
				)
			}
		}

		if groupTally, ok := groupTallies[player.ID]; ok {
			player.NumberQualifiedTeamsGuess = groupTally.qualifiedTeamsGuess
			player.NumberFirstQualifiedGuess = groupTally.firstQualifiedGuess

			player.Points += float64(player.NumberQualifiedTeamsGuess * cfg.TeamQualified)
			player.Points += float64(player.NumberFirstQualifiedGuess * cfg.FirstTeamQualified)

			playerQuarter, err := teamsFromGroupCode(db, player.ID, quarterFinalGroupCode)
			if err != nil {
				return err
			}
			playerSemi, err := teamsFromGroupCode(db, player.ID, semiFinalGroupCode)
			if err != nil {
				return err
			}
			playerFinal, err := teamsFromGroupCode(db, player.ID, finalGroupCode)
			if err != nil {
				return err
			}
			playerWinner, err := winnerFromUser(db, player.ID)
			if err != nil {
				return err
			}

			player.NumberQuarterFinalGuess = intersectionSize(playerQuarter, quarterFinalTeams)
			player.NumberSemiFinalGuess = intersectionSize(playerSemi, semiFinalTeams)
			player.NumberFinalGuess = intersectionSize(playerFinal, finalTeams)
			player.NumberWinnerGuess = intersectionSize(playerWinner, winner)

			player.Points += float64(quarterFinalBonus * player.NumberQuarterFinalGuess)
			player.Points += float64(semiFinalBonus * player.NumberSemiFinalGuess)
			player.Points += float64(finalBonus * player.NumberFinalGuess)
			player.Points += float64(winnerBonus * player.NumberWinnerGuess)
		}

		if err := db.Save(player).Error; err != nil {
			return err
		}
	}

	return nil
}

// betPoints is the shared-points formula: a flat base plus a multiplier that
// shrinks as more players found the same answer. A single player gets the base
// alone since exclusivity is meaningless.
func betPoints(base, multiplier, numberOfPlayers, numberCorrect int) float64 {
	if numberOfPlayers <= 1 {
		return float64(base)
	}
	return float64(base) +
		float64(multiplier)*float64(numberOfPlayers-numberCorrect)/float64(numberOfPlayers-1)
}
