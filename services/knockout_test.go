package services

import (
	"testing"

	"matchday-bets/config"
	"matchday-bets/models"
)

func seedTwoPools(t *testing.T) *fixture {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	f.addPool("GROUP", "B", 2, "DE", "ES", "PT")
	f.addPhase("FINAL", 2)
	f.addKnockout("FINAL", "2", 10, 2)
	return f
}

// Pool results giving the unambiguous rankings A: FR, IE, IM and B: DE, ES, PT.
func fillPools(f *fixture, userID string) {
	f.setScore(userID, "A", 1, intPtr(2), intPtr(0)) // FR-IE
	f.setScore(userID, "A", 2, intPtr(3), intPtr(0)) // FR-IM
	f.setScore(userID, "A", 3, intPtr(1), intPtr(0)) // IE-IM
	f.setScore(userID, "B", 1, intPtr(1), intPtr(0)) // DE-ES
	f.setScore(userID, "B", 2, intPtr(2), intPtr(0)) // DE-PT
	f.setScore(userID, "B", 3, intPtr(1), intPtr(0)) // ES-PT
}

func semiFinalRule() *config.KnockoutRuleConfig {
	return &config.KnockoutRuleConfig{
		FromPhase: "GROUP",
		ToGroup:   "2",
		Versus: []config.KnockoutVersus{
			{
				Team1: config.KnockoutSlot{Rank: 1, Group: "A"},
				Team2: config.KnockoutSlot{Rank: 2, Group: "B"},
			},
			{
				Team1: config.KnockoutSlot{Rank: 1, Group: "B"},
				Team2: config.KnockoutSlot{Rank: 2, Group: "A"},
			},
		},
	}
}

func assertMatchTeams(t *testing.T, f *fixture, match *models.Match, wantTeam1, wantTeam2 string) {
	t.Helper()
	if match.Team1ID == nil || match.Team2ID == nil {
		t.Fatalf("expected both team slots filled, got %v / %v", match.Team1ID, match.Team2ID)
	}
	if *match.Team1ID != f.teams[wantTeam1].ID {
		t.Errorf("expected team1 %s, got id %s", wantTeam1, *match.Team1ID)
	}
	if *match.Team2ID != f.teams[wantTeam2].ID {
		t.Errorf("expected team2 %s, got id %s", wantTeam2, *match.Team2ID)
	}
}

func TestKnockoutDerivationFromGroupRank(t *testing.T) {
	f := seedTwoPools(t)
	u1 := f.signup("u1")
	fillPools(f, u1.ID)

	status, message, err := ComputeKnockoutFromGroupRank(f.db, u1, semiFinalRule())
	if err != nil {
		t.Fatalf("rule failed: %v", err)
	}
	if status != 200 {
		t.Fatalf("expected status 200, got %d (%v)", status, message)
	}

	assertMatchTeams(t, f, f.match(u1.ID, "2", 1), "FR", "ES")
	assertMatchTeams(t, f, f.match(u1.ID, "2", 2), "DE", "IE")
}

func TestKnockoutDerivationIsIdempotent(t *testing.T) {
	f := seedTwoPools(t)
	u1 := f.signup("u1")
	fillPools(f, u1.ID)

	rule := semiFinalRule()
	for run := 0; run < 2; run++ {
		status, _, err := ComputeKnockoutFromGroupRank(f.db, u1, rule)
		if err != nil || status != 200 {
			t.Fatalf("run %d failed: status %d, err %v", run, status, err)
		}
	}

	assertMatchTeams(t, f, f.match(u1.ID, "2", 1), "FR", "ES")
	assertMatchTeams(t, f, f.match(u1.ID, "2", 2), "DE", "IE")
}

func TestKnockoutSkipsIncompleteGroups(t *testing.T) {
	f := seedTwoPools(t)
	u1 := f.signup("u1")

	// Group A is complete, group B is missing one result.
	f.setScore(u1.ID, "A", 1, intPtr(2), intPtr(0))
	f.setScore(u1.ID, "A", 2, intPtr(3), intPtr(0))
	f.setScore(u1.ID, "A", 3, intPtr(1), intPtr(0))
	f.setScore(u1.ID, "B", 1, intPtr(1), intPtr(0))

	status, _, err := ComputeKnockoutFromGroupRank(f.db, u1, semiFinalRule())
	if err != nil || status != 200 {
		t.Fatalf("rule failed: status %d, err %v", status, err)
	}

	for index := 1; index <= 2; index++ {
		match := f.match(u1.ID, "2", index)
		if match.Team1ID != nil || match.Team2ID != nil {
			t.Errorf("expected match %d untouched while group B is incomplete", index)
		}
	}
}

func TestKnockoutUnknownTargetGroup(t *testing.T) {
	f := seedTwoPools(t)
	u1 := f.signup("u1")
	fillPools(f, u1.ID)

	rule := semiFinalRule()
	rule.ToGroup = "XX"

	status, message, err := ComputeKnockoutFromGroupRank(f.db, u1, rule)
	if err != nil {
		t.Fatalf("rule failed: %v", err)
	}
	if status != 404 {
		t.Fatalf("expected 404, got %d (%v)", status, message)
	}
}

func TestKnockoutThirdPlaceResolution(t *testing.T) {
	db := testDB(t)
	f := newFixture(t, db)
	f.addPhase("GROUP", 1)
	f.addPool("GROUP", "A", 1, "FR", "IE", "IM")
	f.addPool("GROUP", "B", 2, "DE", "ES", "PT")
	f.addPool("GROUP", "C", 3, "IT", "NL", "BE")
	f.addPhase("FINAL", 2)
	f.addKnockout("FINAL", "8", 10, 1)

	u1 := f.signup("u1")
	fillPools(f, u1.ID)
	f.setScore(u1.ID, "C", 1, intPtr(4), intPtr(0)) // IT-NL
	f.setScore(u1.ID, "C", 2, intPtr(4), intPtr(0)) // IT-BE
	f.setScore(u1.ID, "C", 3, intPtr(1), intPtr(0)) // NL-BE

	rule := &config.KnockoutRuleConfig{
		FromPhase: "GROUP",
		ToGroup:   "8",
		Versus: []config.KnockoutVersus{
			{
				Team1: config.KnockoutSlot{Rank: 1, Group: "A"},
				Team2: config.KnockoutSlot{Rank: 3, Group: ""},
			},
		},
		ThirdPlaceLookup:  map[string][]string{"ABC": {"3C"}},
		ThirdPlaceMatchup: []int{1},
	}

	status, message, err := ComputeKnockoutFromGroupRank(f.db, u1, rule)
	if err != nil || status != 200 {
		t.Fatalf("rule failed: status %d (%v), err %v", status, message, err)
	}

	// The dynamic slot resolves to group C's third team, BE.
	assertMatchTeams(t, f, f.match(u1.ID, "8", 1), "FR", "BE")
}
