package services

import (
	"testing"
	"time"

	"matchday-bets/models"

	"gorm.io/gorm"
)

func TestSignupMaterialisesEverything(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	f.addPhase("FINAL", 2)
	f.addKnockout("FINAL", "1", 10, 1)

	user := f.signup("u1")

	var matchCount int64
	db.Model(&models.Match{}).Where("user_id = ?", user.ID).Count(&matchCount)
	if matchCount != 4 {
		t.Fatalf("expected 4 matches, got %d", matchCount)
	}

	var scoreCount, binaryCount int64
	db.Model(&models.ScoreBet{}).Where("user_id = ?", user.ID).Count(&scoreCount)
	db.Model(&models.BinaryBet{}).Where("user_id = ?", user.ID).Count(&binaryCount)
	if scoreCount != 3 || binaryCount != 1 {
		t.Fatalf("expected 3 score bets and 1 binary bet, got %d and %d", scoreCount, binaryCount)
	}

	positions := f.positions(user.ID, "A")
	if len(positions) != 3 {
		t.Fatalf("expected 3 group positions, got %d", len(positions))
	}
	for _, p := range positions {
		if p.Won != 0 || p.Drawn != 0 || p.Lost != 0 || p.GoalsFor != 0 || p.GoalsAgainst != 0 {
			t.Errorf("expected zeroed counters for team %s, got %+v", p.TeamID, p)
		}
	}

	// The knockout group has no team slots yet, so no positions there.
	var knockoutPositions int64
	db.Model(&models.GroupPosition{}).
		Where("user_id = ? AND group_id = ?", user.ID, f.groups["1"].ID).
		Count(&knockoutPositions)
	if knockoutPositions != 0 {
		t.Errorf("expected no positions for the knockout group, got %d", knockoutPositions)
	}
}

func TestIncrementalMatchesBatchRecompute(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	user := f.signup("u1")

	steps := []struct {
		index          int
		score1, score2 *int
	}{
		{1, intPtr(1), intPtr(2)},
		{2, intPtr(5), intPtr(1)},
		{1, intPtr(2), intPtr(2)}, // revise match 1 to a draw
		{3, intPtr(5), intPtr(5)},
		{2, nil, nil}, // retract match 2 entirely
		{2, intPtr(0), intPtr(3)},
	}
	for _, step := range steps {
		f.setScore(user.ID, "A", step.index, step.score1, step.score2)
	}

	incremental := f.positions(user.ID, "A")

	err := db.Transaction(func(tx *gorm.DB) error {
		return RecomputeGroupPositions(tx, user.ID, f.groups["A"].ID)
	})
	if err != nil {
		t.Fatalf("recompute failed: %v", err)
	}
	batch := f.positions(user.ID, "A")

	for i := range incremental {
		a, b := incremental[i], batch[i]
		if a.TeamID != b.TeamID {
			t.Fatalf("position order mismatch at %d", i)
		}
		if a.Won != b.Won || a.Drawn != b.Drawn || a.Lost != b.Lost ||
			a.GoalsFor != b.GoalsFor || a.GoalsAgainst != b.GoalsAgainst {
			t.Errorf("team %s: incremental %+v != batch %+v", a.Team.Code, a, b)
		}
	}
}

func TestStandingsStayConsistentAtEveryStep(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	user := f.signup("u1")

	steps := []struct {
		index          int
		score1, score2 *int
	}{
		{1, intPtr(3), intPtr(0)},
		{2, intPtr(0), intPtr(0)},
		{1, intPtr(0), intPtr(1)},
		{3, intPtr(2), intPtr(4)},
		{1, nil, nil},
	}
	for _, step := range steps {
		f.setScore(user.ID, "A", step.index, step.score1, step.score2)

		for _, p := range f.positions(user.ID, "A") {
			if p.Won < 0 || p.Drawn < 0 || p.Lost < 0 || p.GoalsFor < 0 || p.GoalsAgainst < 0 {
				t.Fatalf("negative counter for team %s: %+v", p.TeamID, p)
			}
			if p.Played() != p.Won+p.Drawn+p.Lost {
				t.Fatalf("played mismatch for team %s", p.TeamID)
			}
			if p.Points() != 3*p.Won+p.Drawn {
				t.Fatalf("points law broken for team %s", p.TeamID)
			}
		}
	}
}

func TestPartialScoreLeavesStandingsUntouched(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	user := f.signup("u1")

	// Only one side of the score is known: still ANY_NONE.
	f.setScore(user.ID, "A", 1, intPtr(3), nil)

	for _, p := range f.positions(user.ID, "A") {
		if p.Played() != 0 || p.GoalsFor != 0 || p.GoalsAgainst != 0 {
			t.Errorf("expected untouched standings, got %+v", p)
		}
	}

	// Completing the pair applies the whole match at once.
	f.setScore(user.ID, "A", 1, intPtr(3), intPtr(1))

	positions := f.positions(user.ID, "A")
	totalPlayed := 0
	for _, p := range positions {
		totalPlayed += p.Played()
	}
	if totalPlayed != 2 {
		t.Errorf("expected both teams of match 1 to have played, total played = %d", totalPlayed)
	}
}

func TestApplyScoreChangeOutsideHomeGroup(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	f.addPhase("FINAL", 2)
	f.addKnockout("FINAL", "1", 10, 1)
	user := f.signup("u1")

	// A score applied in a group without standings rows must not leak goal
	// deltas into the teams' pool standings.
	err := db.Transaction(func(tx *gorm.DB) error {
		return ApplyScoreChange(tx, user.ID, f.groups["1"].ID,
			&f.teams["FR"].ID, &f.teams["IE"].ID, nil, nil, intPtr(2), intPtr(0))
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	for _, p := range f.positions(user.ID, "A") {
		if p.Played() != 0 || p.GoalsFor != 0 || p.GoalsAgainst != 0 {
			t.Errorf("pool standings touched for team %s: %+v", p.Team.Code, p)
		}
		if (p.Team.Code == "FR" || p.Team.Code == "IE") && !p.NeedRecomputation {
			t.Errorf("expected team %s flagged for recomputation", p.Team.Code)
		}
	}
}

func TestSortPositionsOrdering(t *testing.T) {
	positions := []models.GroupPosition{
		{TeamID: "c", Won: 1, Drawn: 0, Lost: 1, GoalsFor: 2, GoalsAgainst: 2, Team: models.Team{Code: "CC"}},
		{TeamID: "a", Won: 2, Drawn: 0, Lost: 0, GoalsFor: 4, GoalsAgainst: 1, Team: models.Team{Code: "AA"}},
		{TeamID: "d", Won: 1, Drawn: 0, Lost: 1, GoalsFor: 3, GoalsAgainst: 3, Team: models.Team{Code: "DD"}},
		{TeamID: "b", Won: 1, Drawn: 0, Lost: 1, GoalsFor: 3, GoalsAgainst: 2, Team: models.Team{Code: "BB"}},
	}

	SortPositions(positions)

	got := make([]string, len(positions))
	for i, p := range positions {
		got[i] = p.Team.Code
	}
	want := []string{"AA", "BB", "DD", "CC"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSortPositionsTeamCodeTiebreak(t *testing.T) {
	positions := []models.GroupPosition{
		{TeamID: "b", Team: models.Team{Code: "BB"}},
		{TeamID: "a", Team: models.Team{Code: "AA"}},
	}
	SortPositions(positions)
	if positions[0].Team.Code != "AA" {
		t.Fatalf("expected AA first on full tie, got %s", positions[0].Team.Code)
	}
}

func TestLoadGroupRankRecomputesStaleRows(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	user := f.signup("u1")

	// Write scores without the incremental update, then flag the rows the way
	// bet creation and the results importer do.
	match := f.match(user.ID, "A", 1)
	var bet models.ScoreBet
	if err := db.First(&bet, "match_id = ?", match.ID).Error; err != nil {
		t.Fatalf("bet not found: %v", err)
	}
	bet.Score1, bet.Score2 = intPtr(2), intPtr(0)
	if err := db.Save(&bet).Error; err != nil {
		t.Fatalf("failed to save bet: %v", err)
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		return MarkStale(tx, user.ID, match.Team1ID, match.Team2ID)
	})
	if err != nil {
		t.Fatalf("failed to mark stale: %v", err)
	}

	ranked, err := LoadGroupRank(db, user.ID, f.groups["A"].ID)
	if err != nil {
		t.Fatalf("failed to load group rank: %v", err)
	}

	if ranked[0].Team.Code != "FR" || ranked[0].Points() != 3 {
		t.Errorf("expected FR on top with 3 points, got %s with %d", ranked[0].Team.Code, ranked[0].Points())
	}
	for _, p := range ranked {
		if p.NeedRecomputation {
			t.Errorf("expected recomputation flag cleared for team %s", p.TeamID)
		}
	}
}

func TestIsLocked(t *testing.T) {
	admin := &models.User{Role: models.RoleAdmin}
	player := &models.User{Role: models.RoleUser}

	past := time.Now().UTC().Add(-10 * time.Minute)
	future := time.Now().UTC().Add(10 * time.Minute)

	if IsLocked(player, future) {
		t.Error("player should not be locked before the lock datetime")
	}
	if !IsLocked(player, past) {
		t.Error("player should be locked after the lock datetime")
	}
	if IsLocked(admin, past) {
		t.Error("admin is never locked")
	}
}
