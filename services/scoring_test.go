package services

import (
	"math"
	"testing"
	"time"

	"matchday-bets/models"
)

func seedScoringFixture(t *testing.T) (*fixture, *models.User) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")

	admin := f.signup("admin")
	f.setScore(admin.ID, "A", 1, intPtr(1), intPtr(2))
	f.setScore(admin.ID, "A", 2, intPtr(5), intPtr(1))
	f.setScore(admin.ID, "A", 3, intPtr(5), intPtr(5))

	return f, admin
}

func reloadUser(t *testing.T, f *fixture, id string) *models.User {
	t.Helper()
	var user models.User
	if err := f.db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return &user
}

func TestComputePointsSinglePlayer(t *testing.T) {
	f, admin := seedScoringFixture(t)
	settings := testSettings(time.Now().Add(time.Hour))

	u1 := f.signup("u1")
	f.setScore(u1.ID, "A", 1, intPtr(2), intPtr(2))
	f.setScore(u1.ID, "A", 2, intPtr(5), intPtr(1))
	f.setScore(u1.ID, "A", 3, intPtr(5), intPtr(5))

	if err := ComputePoints(f.db, admin, settings.Scoring); err != nil {
		t.Fatalf("compute points failed: %v", err)
	}

	got := reloadUser(t, f, u1.ID)
	if got.NumberMatchGuess != 2 || got.NumberScoreGuess != 2 {
		t.Errorf("expected 2 correct results and 2 correct scores, got %d and %d",
			got.NumberMatchGuess, got.NumberScoreGuess)
	}
	if got.NumberQualifiedTeamsGuess != 2 || got.NumberFirstQualifiedGuess != 0 {
		t.Errorf("expected 2 qualified and 0 first qualified, got %d and %d",
			got.NumberQualifiedTeamsGuess, got.NumberFirstQualifiedGuess)
	}
	// With a single player the multiplying term vanishes:
	// 2x1 + 2x3 from matches plus 2x10 for qualified teams.
	if got.Points != 28 {
		t.Errorf("expected 28 points, got %v", got.Points)
	}
}

func TestComputePointsMultiplyingFactor(t *testing.T) {
	f, admin := seedScoringFixture(t)
	settings := testSettings(time.Now().Add(time.Hour))

	u1 := f.signup("u1")
	f.setScore(u1.ID, "A", 1, intPtr(2), intPtr(2))
	f.setScore(u1.ID, "A", 2, intPtr(5), intPtr(1))
	f.setScore(u1.ID, "A", 3, intPtr(5), intPtr(5))

	u2 := f.signup("u2")
	f.setScore(u2.ID, "A", 1, intPtr(2), intPtr(0))
	f.setScore(u2.ID, "A", 2, intPtr(2), intPtr(0))
	f.setScore(u2.ID, "A", 3, intPtr(1), intPtr(4))

	u3 := f.signup("u3")
	f.setScore(u3.ID, "A", 1, intPtr(0), intPtr(2))
	f.setScore(u3.ID, "A", 2, intPtr(2), intPtr(0))
	f.setScore(u3.ID, "A", 3, intPtr(1), intPtr(1))

	if err := ComputePoints(f.db, admin, settings.Scoring); err != nil {
		t.Fatalf("compute points failed: %v", err)
	}

	expected := map[string]float64{
		u1.ID: 43,
		u2.ID: 11,
		u3.ID: 46,
	}
	for id, want := range expected {
		got := reloadUser(t, f, id)
		if math.Abs(got.Points-want) > 1e-9 {
			t.Errorf("user %s: expected %v points, got %v", got.Name, want, got.Points)
		}
	}
}

func TestComputePointsIsDeterministic(t *testing.T) {
	f, admin := seedScoringFixture(t)
	settings := testSettings(time.Now().Add(time.Hour))

	u1 := f.signup("u1")
	f.setScore(u1.ID, "A", 1, intPtr(1), intPtr(2))
	f.setScore(u1.ID, "A", 2, intPtr(3), intPtr(0))

	if err := ComputePoints(f.db, admin, settings.Scoring); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := reloadUser(t, f, u1.ID)

	if err := ComputePoints(f.db, admin, settings.Scoring); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	second := reloadUser(t, f, u1.ID)

	if first.Points != second.Points ||
		first.NumberMatchGuess != second.NumberMatchGuess ||
		first.NumberScoreGuess != second.NumberScoreGuess {
		t.Errorf("reruns diverged: %+v vs %+v", first, second)
	}
}

func TestComputePointsKnockoutBonuses(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	f.addPhase("FINAL", 2)
	f.addKnockout("FINAL", "1", 10, 1)
	settings := testSettings(time.Now().Add(time.Hour))

	admin := f.signup("admin")
	f.setScore(admin.ID, "A", 1, intPtr(1), intPtr(2))
	f.setScore(admin.ID, "A", 2, intPtr(5), intPtr(1))
	f.setScore(admin.ID, "A", 3, intPtr(5), intPtr(5))

	u1 := f.signup("u1")
	f.setScore(u1.ID, "A", 1, intPtr(1), intPtr(2))
	f.setScore(u1.ID, "A", 2, intPtr(5), intPtr(1))
	f.setScore(u1.ID, "A", 3, intPtr(5), intPtr(5))

	// Both the admin and u1 see FR vs IE in the final, with FR winning.
	for _, userID := range []string{admin.ID, u1.ID} {
		match := f.match(userID, "1", 1)
		err := f.db.Model(match).Updates(map[string]interface{}{
			"team1_id": f.teams["FR"].ID,
			"team2_id": f.teams["IE"].ID,
		}).Error
		if err != nil {
			t.Fatalf("failed to set final teams: %v", err)
		}
		f.setBinary(userID, "1", 1, boolPtr(true))
	}

	if err := ComputePoints(f.db, admin, settings.Scoring); err != nil {
		t.Fatalf("compute points failed: %v", err)
	}

	got := reloadUser(t, f, u1.ID)
	if got.NumberFinalGuess != 2 {
		t.Errorf("expected both finalists guessed, got %d", got.NumberFinalGuess)
	}
	if got.NumberWinnerGuess != 1 {
		t.Errorf("expected winner guessed, got %d", got.NumberWinnerGuess)
	}

	// Identical bets across the board: 3x(1+3) for matches, 2x10 qualified,
	// 20 first qualified, 2x120 finalists, 200 winner.
	want := float64(3*(1+3) + 2*10 + 20 + 2*120 + 200)
	if math.Abs(got.Points-want) > 1e-9 {
		t.Errorf("expected %v points, got %v", want, got.Points)
	}
}
