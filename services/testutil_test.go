package services

import (
	"testing"
	"time"

	"matchday-bets/config"
	"matchday-bets/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Phase{},
		&models.Group{},
		&models.Team{},
		&models.MatchReference{},
		&models.Match{},
		&models.ScoreBet{},
		&models.BinaryBet{},
		&models.GroupPosition{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// Coefficients used across the scoring tests:
// correct result 1 + 2x, correct score 3 + 7x, qualified 10, first 20.
func testSettings(lock time.Time) *config.Settings {
	return &config.Settings{
		LockDatetime: lock,
		Scoring: config.ScoringRuleConfig{
			BaseCorrectResult:              1,
			MultiplyingFactorCorrectResult: 2,
			BaseCorrectScore:               3,
			MultiplyingFactorCorrectScore:  7,
			TeamQualified:                  10,
			FirstTeamQualified:             20,
		},
	}
}

type fixture struct {
	t  *testing.T
	db *gorm.DB

	phases map[string]*models.Phase
	groups map[string]*models.Group
	teams  map[string]*models.Team
}

func newFixture(t *testing.T, db *gorm.DB) *fixture {
	return &fixture{
		t:      t,
		db:     db,
		phases: make(map[string]*models.Phase),
		groups: make(map[string]*models.Group),
		teams:  make(map[string]*models.Team),
	}
}

func (f *fixture) addPhase(code string, index int) {
	f.t.Helper()
	phase := &models.Phase{
		ID:            uuid.NewString(),
		Code:          code,
		DescriptionFr: "Phase " + code,
		DescriptionEn: "Phase " + code,
		Index:         index,
	}
	if err := f.db.Create(phase).Error; err != nil {
		f.t.Fatalf("failed to create phase %s: %v", code, err)
	}
	f.phases[code] = phase
}

func (f *fixture) addTeam(code string) *models.Team {
	f.t.Helper()
	if team, ok := f.teams[code]; ok {
		return team
	}
	team := &models.Team{
		ID:            uuid.NewString(),
		Code:          code,
		DescriptionFr: "Equipe " + code,
		DescriptionEn: "Team " + code,
	}
	if err := f.db.Create(team).Error; err != nil {
		f.t.Fatalf("failed to create team %s: %v", code, err)
	}
	f.teams[code] = team
	return team
}

// addPool creates a group with a full round robin of score match references.
// Matches are indexed 1..n in (t1,t2), (t1,t3), ... pairing order.
func (f *fixture) addPool(phaseCode, groupCode string, index int, teamCodes ...string) {
	f.t.Helper()
	group := &models.Group{
		ID:            uuid.NewString(),
		Code:          groupCode,
		DescriptionFr: "Groupe " + groupCode,
		DescriptionEn: "Group " + groupCode,
		Index:         index,
		PhaseID:       f.phases[phaseCode].ID,
	}
	if err := f.db.Create(group).Error; err != nil {
		f.t.Fatalf("failed to create group %s: %v", groupCode, err)
	}
	f.groups[groupCode] = group

	matchIndex := 1
	for i := 0; i < len(teamCodes); i++ {
		for j := i + 1; j < len(teamCodes); j++ {
			team1 := f.addTeam(teamCodes[i])
			team2 := f.addTeam(teamCodes[j])
			ref := &models.MatchReference{
				ID:      uuid.NewString(),
				GroupID: group.ID,
				Index:   matchIndex,
				Team1ID: &team1.ID,
				Team2ID: &team2.ID,
				BetKind: models.BetKindScore,
			}
			if err := f.db.Create(ref).Error; err != nil {
				f.t.Fatalf("failed to create match reference: %v", err)
			}
			matchIndex++
		}
	}
}

// addKnockout creates a group whose matches are binary bets with empty team
// slots, to be filled by the knockout rule.
func (f *fixture) addKnockout(phaseCode, groupCode string, index, matches int) {
	f.t.Helper()
	group := &models.Group{
		ID:            uuid.NewString(),
		Code:          groupCode,
		DescriptionFr: "Groupe " + groupCode,
		DescriptionEn: "Group " + groupCode,
		Index:         index,
		PhaseID:       f.phases[phaseCode].ID,
	}
	if err := f.db.Create(group).Error; err != nil {
		f.t.Fatalf("failed to create group %s: %v", groupCode, err)
	}
	f.groups[groupCode] = group

	for i := 1; i <= matches; i++ {
		ref := &models.MatchReference{
			ID:      uuid.NewString(),
			GroupID: group.ID,
			Index:   i,
			BetKind: models.BetKindBinary,
		}
		if err := f.db.Create(ref).Error; err != nil {
			f.t.Fatalf("failed to create match reference: %v", err)
		}
	}
}

// signup creates a user and materialises their bets, like the signup endpoint
// does after validation.
func (f *fixture) signup(name string) *models.User {
	f.t.Helper()
	role := models.RoleUser
	if name == models.AdminName {
		role = models.RoleAdmin
	}
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		FirstName:    name,
		LastName:     "Test",
		PasswordHash: "x",
		Role:         role,
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return materialiseBets(tx, user)
	})
	if err != nil {
		f.t.Fatalf("failed to sign up %s: %v", name, err)
	}
	return user
}

func (f *fixture) match(userID, groupCode string, index int) *models.Match {
	f.t.Helper()
	var match models.Match
	err := f.db.Where("user_id = ? AND group_id = ? AND \"index\" = ?",
		userID, f.groups[groupCode].ID, index).First(&match).Error
	if err != nil {
		f.t.Fatalf("match not found for group %s index %d: %v", groupCode, index, err)
	}
	return &match
}

// setScore drives a score bet through the same incremental standings update as
// the modify endpoint.
func (f *fixture) setScore(userID, groupCode string, index int, score1, score2 *int) {
	f.t.Helper()
	match := f.match(userID, groupCode, index)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		var bet models.ScoreBet
		if err := tx.First(&bet, "match_id = ?", match.ID).Error; err != nil {
			return err
		}
		err := ApplyScoreChange(tx, userID, match.GroupID, match.Team1ID, match.Team2ID,
			bet.Score1, bet.Score2, score1, score2)
		if err != nil {
			return err
		}
		bet.Score1, bet.Score2 = score1, score2
		return tx.Save(&bet).Error
	})
	if err != nil {
		f.t.Fatalf("failed to set score on group %s index %d: %v", groupCode, index, err)
	}
}

func (f *fixture) setBinary(userID, groupCode string, index int, isOneWon *bool) {
	f.t.Helper()
	match := f.match(userID, groupCode, index)

	var bet models.BinaryBet
	if err := f.db.First(&bet, "match_id = ?", match.ID).Error; err != nil {
		f.t.Fatalf("binary bet not found for group %s index %d: %v", groupCode, index, err)
	}
	bet.IsOneWon = isOneWon
	if err := f.db.Save(&bet).Error; err != nil {
		f.t.Fatalf("failed to set binary bet: %v", err)
	}
}

func (f *fixture) positions(userID, groupCode string) []models.GroupPosition {
	f.t.Helper()
	var positions []models.GroupPosition
	err := f.db.Preload("Team").
		Where("user_id = ? AND group_id = ?", userID, f.groups[groupCode].ID).
		Order("team_id").
		Find(&positions).Error
	if err != nil {
		f.t.Fatalf("failed to load positions: %v", err)
	}
	return positions
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
