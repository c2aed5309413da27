package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// KnockoutSlot designates one participant of a knockout match by the rank it
// holds in a source group. A slot with rank 3 and an empty group code is
// dynamic: the group is resolved from the best third-place teams.
type KnockoutSlot struct {
	Rank  int    `json:"rank"`
	Group string `json:"group"`
}

type KnockoutVersus struct {
	Team1 KnockoutSlot `json:"team1"`
	Team2 KnockoutSlot `json:"team2"`
}

// KnockoutRuleConfig drives the derivation of a knockout group's matches from
// the rankings of a source phase.
type KnockoutRuleConfig struct {
	FromPhase string           `json:"from_phase"`
	ToGroup   string           `json:"to_group"`
	Versus    []KnockoutVersus `json:"versus"`

	// Optional third-place resolution for 24-team style editions.
	ThirdPlaceLookup  map[string][]string `json:"third_place_lookup,omitempty"`
	ThirdPlaceMatchup []int               `json:"third_place_matchup,omitempty"`
}

// ScoringRuleConfig carries the six coefficients of the point-scoring rule.
type ScoringRuleConfig struct {
	BaseCorrectResult              int `json:"base_correct_result"`
	MultiplyingFactorCorrectResult int `json:"multiplying_factor_correct_result"`
	BaseCorrectScore               int `json:"base_correct_score"`
	MultiplyingFactorCorrectScore  int `json:"multiplying_factor_correct_score"`
	TeamQualified                  int `json:"team_qualified"`
	FirstTeamQualified             int `json:"first_team_qualified"`
}

// Settings is the immutable configuration value loaded once at startup and
// passed as an explicit dependency to the services.
type Settings struct {
	DatabaseURL  string
	Competition  string
	DataFolder   string
	LockDatetime time.Time

	// ServiceToken authenticates requests coming through the gateway.
	ServiceToken string
	// JWTSecret is consumed by the external auth layer; carried here so one
	// bundle configures the whole deployment.
	JWTSecret string
	// ResultsSourceURL is consumed by the external official-results scraper.
	ResultsSourceURL string

	Scoring  ScoringRuleConfig
	Knockout *KnockoutRuleConfig
}

func Load() (*Settings, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	dataFolder := os.Getenv("DATA_FOLDER")
	if dataFolder == "" {
		return nil, fmt.Errorf("DATA_FOLDER environment variable not set")
	}

	lockRaw := os.Getenv("LOCK_DATETIME")
	if lockRaw == "" {
		return nil, fmt.Errorf("LOCK_DATETIME environment variable not set")
	}
	lockDatetime, err := time.Parse(time.RFC3339, lockRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_DATETIME (use RFC3339): %w", err)
	}

	scoring, err := loadScoring()
	if err != nil {
		return nil, err
	}

	knockout, err := loadKnockout(dataFolder)
	if err != nil {
		return nil, err
	}

	return &Settings{
		DatabaseURL:      dsn,
		Competition:      os.Getenv("COMPETITION"),
		DataFolder:       dataFolder,
		LockDatetime:     lockDatetime,
		ServiceToken:     os.Getenv("BETS_SERVICE_TOKEN"),
		JWTSecret:        os.Getenv("JWT_SECRET_KEY"),
		ResultsSourceURL: os.Getenv("RESULTS_SOURCE_URL"),
		Scoring:          scoring,
		Knockout:         knockout,
	}, nil
}

func loadScoring() (ScoringRuleConfig, error) {
	var cfg ScoringRuleConfig
	for _, entry := range []struct {
		name   string
		target *int
	}{
		{"BASE_CORRECT_RESULT", &cfg.BaseCorrectResult},
		{"MULTIPLYING_FACTOR_CORRECT_RESULT", &cfg.MultiplyingFactorCorrectResult},
		{"BASE_CORRECT_SCORE", &cfg.BaseCorrectScore},
		{"MULTIPLYING_FACTOR_CORRECT_SCORE", &cfg.MultiplyingFactorCorrectScore},
		{"TEAM_QUALIFIED", &cfg.TeamQualified},
		{"FIRST_TEAM_QUALIFIED", &cfg.FirstTeamQualified},
	} {
		raw := os.Getenv(entry.name)
		if raw == "" {
			return cfg, fmt.Errorf("%s environment variable not set", entry.name)
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, fmt.Errorf("%s must be an integer: %w", entry.name, err)
		}
		*entry.target = value
	}
	return cfg, nil
}

// loadKnockout reads the knockout rule block from the data folder. The file is
// optional: a competition without a derived knockout group simply omits it.
func loadKnockout(dataFolder string) (*KnockoutRuleConfig, error) {
	raw, err := os.ReadFile(filepath.Join(dataFolder, "knockout_rule.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read knockout_rule.json: %w", err)
	}

	var cfg KnockoutRuleConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid knockout_rule.json: %w", err)
	}
	return &cfg, nil
}
