package services

import (
	"sort"
	"time"

	"matchday-bets/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IsLocked is the single source of truth for the betting cutoff: once the
// lock datetime has passed, only the admin may keep editing.
func IsLocked(user *models.User, lockDatetime time.Time) bool {
	return !user.IsAdmin() && !time.Now().UTC().Before(lockDatetime)
}

// BuildGroupPositions creates the zeroed standings rows for a fresh user: one
// per (group, team) pair referenced by the catalog. References with empty
// team slots contribute nothing until the knockout rule fills them in.
func BuildGroupPositions(refs []models.MatchReference, userID string) []models.GroupPosition {
	seen := make(map[string]bool)
	var positions []models.GroupPosition

	for _, ref := range refs {
		for _, teamID := range []*string{ref.Team1ID, ref.Team2ID} {
			if teamID == nil {
				continue
			}
			key := ref.GroupID + ":" + *teamID
			if seen[key] {
				continue
			}
			seen[key] = true
			positions = append(positions, models.GroupPosition{
				ID:      uuid.NewString(),
				UserID:  userID,
				GroupID: ref.GroupID,
				TeamID:  *teamID,
			})
		}
	}

	return positions
}

// ApplyScoreChange updates the two standings rows of the bet's group touched
// by a score bet moving from (old1, old2) to (new1, new2). Must run inside the
// same transaction as the bet write. Rows are locked in ascending team-id
// order so two mutations of the same match cannot deadlock. A match whose
// group carries no standings row for a team falls back to the stale flag so
// the batch recompute settles it.
func ApplyScoreChange(tx *gorm.DB, userID, groupID string, team1ID, team2ID *string, old1, old2, new1, new2 *int) error {
	if team1ID == nil || team2ID == nil {
		return nil
	}

	oldState := models.ClassifyScores(old1, old2)
	newState := models.ClassifyScores(new1, new2)
	if oldState == models.StateAnyNone && newState == models.StateAnyNone {
		return nil
	}

	first, second := *team1ID, *team2ID
	if second < first {
		first, second = second, first
	}

	positions := make(map[string]*models.GroupPosition, 2)
	for _, teamID := range []string{first, second} {
		var position models.GroupPosition
		err := forUpdate(tx).
			Where("user_id = ? AND group_id = ? AND team_id = ?", userID, groupID, teamID).
			First(&position).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return MarkStale(tx, userID, team1ID, team2ID)
			}
			return err
		}
		positions[teamID] = &position
	}

	posA := positions[*team1ID]
	posB := positions[*team2ID]

	switch {
	case oldState == models.StateAnyNone:
		posA.GoalsFor += *new1
		posA.GoalsAgainst += *new2
		posB.GoalsFor += *new2
		posB.GoalsAgainst += *new1
	case newState == models.StateAnyNone:
		posA.GoalsFor -= *old1
		posA.GoalsAgainst -= *old2
		posB.GoalsFor -= *old2
		posB.GoalsAgainst -= *old1
	default:
		posA.GoalsFor += *new1 - *old1
		posA.GoalsAgainst += *new2 - *old2
		posB.GoalsFor += *new2 - *old2
		posB.GoalsAgainst += *new1 - *old1
	}

	switch oldState {
	case models.StateOneWin:
		posA.Won--
		posB.Lost--
	case models.StateDrawn:
		posA.Drawn--
		posB.Drawn--
	case models.StateTwoWin:
		posA.Lost--
		posB.Won--
	}

	switch newState {
	case models.StateOneWin:
		posA.Won++
		posB.Lost++
	case models.StateDrawn:
		posA.Drawn++
		posB.Drawn++
	case models.StateTwoWin:
		posA.Lost++
		posB.Won++
	}

	for _, teamID := range []string{first, second} {
		if err := tx.Save(positions[teamID]).Error; err != nil {
			return err
		}
	}

	return nil
}

// MarkStale flags the standings rows of the given teams for recomputation.
// Used by the code paths where an incremental delta is not available (bet
// creation, deletion, official-results import).
func MarkStale(tx *gorm.DB, userID string, teamIDs ...*string) error {
	for _, teamID := range teamIDs {
		if teamID == nil {
			continue
		}
		err := tx.Model(&models.GroupPosition{}).
			Where("user_id = ? AND team_id = ? AND need_recomputation = ?", userID, *teamID, false).
			Update("need_recomputation", true).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// RecomputeGroupPositions rebuilds the standings of one (user, group) pair
// from scratch out of the user's score bets and clears the stale flags.
func RecomputeGroupPositions(tx *gorm.DB, userID, groupID string) error {
	var positions []models.GroupPosition
	err := forUpdate(tx).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Order("team_id").
		Find(&positions).Error
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		return nil
	}

	var matches []models.Match
	if err := tx.Where("user_id = ? AND group_id = ?", userID, groupID).Find(&matches).Error; err != nil {
		return err
	}

	matchByID := make(map[string]*models.Match, len(matches))
	matchIDs := make([]string, 0, len(matches))
	for i := range matches {
		matchByID[matches[i].ID] = &matches[i]
		matchIDs = append(matchIDs, matches[i].ID)
	}

	var bets []models.ScoreBet
	if len(matchIDs) > 0 {
		if err := tx.Where("match_id IN ?", matchIDs).Find(&bets).Error; err != nil {
			return err
		}
	}

	type tally struct {
		won, drawn, lost, goalsFor, goalsAgainst int
	}
	tallies := make(map[string]*tally, len(positions))
	for i := range positions {
		tallies[positions[i].TeamID] = &tally{}
	}

	for i := range bets {
		bet := &bets[i]
		match := matchByID[bet.MatchID]
		if match == nil || match.Team1ID == nil || match.Team2ID == nil {
			continue
		}
		t1, ok1 := tallies[*match.Team1ID]
		t2, ok2 := tallies[*match.Team2ID]
		if !ok1 || !ok2 || !bet.IsComplete() {
			continue
		}

		t1.goalsFor += *bet.Score1
		t1.goalsAgainst += *bet.Score2
		t2.goalsFor += *bet.Score2
		t2.goalsAgainst += *bet.Score1

		switch {
		case *bet.Score1 > *bet.Score2:
			t1.won++
			t2.lost++
		case *bet.Score1 == *bet.Score2:
			t1.drawn++
			t2.drawn++
		default:
			t1.lost++
			t2.won++
		}
	}

	for i := range positions {
		p := &positions[i]
		t := tallies[p.TeamID]
		p.Won = t.won
		p.Drawn = t.drawn
		p.Lost = t.lost
		p.GoalsFor = t.goalsFor
		p.GoalsAgainst = t.goalsAgainst
		p.NeedRecomputation = false
		if err := tx.Save(p).Error; err != nil {
			return err
		}
	}

	return nil
}

// SortPositions orders a group's standings: points, then goal difference,
// then goals for, all descending, with the team code as the deterministic
// tiebreak.
func SortPositions(positions []models.GroupPosition) {
	sort.SliceStable(positions, func(i, j int) bool {
		a, b := &positions[i], &positions[j]
		if a.Points() != b.Points() {
			return a.Points() > b.Points()
		}
		if a.GoalsDifference() != b.GoalsDifference() {
			return a.GoalsDifference() > b.GoalsDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team.Code < b.Team.Code
	})
}

// LoadGroupRank returns the sorted standings of one (user, group) pair,
// recomputing first when any row is flagged stale.
func LoadGroupRank(db *gorm.DB, userID, groupID string) ([]models.GroupPosition, error) {
	load := func() ([]models.GroupPosition, error) {
		var positions []models.GroupPosition
		err := db.Preload("Team").
			Where("user_id = ? AND group_id = ?", userID, groupID).
			Find(&positions).Error
		return positions, err
	}

	positions, err := load()
	if err != nil {
		return nil, err
	}

	stale := false
	for i := range positions {
		if positions[i].NeedRecomputation {
			stale = true
			break
		}
	}

	if stale {
		err = withTransientRetry(db, func(tx *gorm.DB) error {
			return RecomputeGroupPositions(tx, userID, groupID)
		})
		if err != nil {
			return nil, err
		}
		if positions, err = load(); err != nil {
			return nil, err
		}
	}

	SortPositions(positions)
	return positions, nil
}

// GroupIsComplete reports whether every team of the group has played all its
// matches on this user's bets.
func GroupIsComplete(positions []models.GroupPosition) bool {
	if len(positions) == 0 {
		return false
	}
	for i := range positions {
		if positions[i].Played() != len(positions)-1 {
			return false
		}
	}
	return true
}
