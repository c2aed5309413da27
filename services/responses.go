package services

import (
	"matchday-bets/models"
)

// Response shapes returned inside the {ok, result} envelope. Descriptions are
// resolved against the requested language.

type FlagOut struct {
	URL string `json:"url"`
}

type PhaseOut struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Index       int    `json:"index"`
}

type GroupOut struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Index       int    `json:"index"`
	PhaseID     string `json:"phase_id,omitempty"`
}

type TeamOut struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Flag        FlagOut `json:"flag"`
}

type TeamWithScoreOut struct {
	TeamOut
	Score *int `json:"score"`
}

type TeamWithWonOut struct {
	TeamOut
	Won *bool `json:"won"`
}

type ScoreBetOut struct {
	ID      string            `json:"id"`
	Locked  bool              `json:"locked"`
	GroupID string            `json:"group_id,omitempty"`
	Index   int               `json:"index"`
	Team1   *TeamWithScoreOut `json:"team1"`
	Team2   *TeamWithScoreOut `json:"team2"`
}

type BinaryBetOut struct {
	ID      string          `json:"id"`
	Locked  bool            `json:"locked"`
	GroupID string          `json:"group_id,omitempty"`
	Index   int             `json:"index"`
	Team1   *TeamWithWonOut `json:"team1"`
	Team2   *TeamWithWonOut `json:"team2"`
}

type ScoreBetResponse struct {
	Phase    PhaseOut    `json:"phase"`
	Group    GroupOut    `json:"group"`
	ScoreBet ScoreBetOut `json:"score_bet"`
}

type BinaryBetResponse struct {
	Phase     PhaseOut     `json:"phase"`
	Group     GroupOut     `json:"group"`
	BinaryBet BinaryBetOut `json:"binary_bet"`
}

type AllBetsResponse struct {
	Phases     []PhaseOut     `json:"phases"`
	Groups     []GroupOut     `json:"groups"`
	ScoreBets  []ScoreBetOut  `json:"score_bets"`
	BinaryBets []BinaryBetOut `json:"binary_bets"`
}

type GroupRankPositionOut struct {
	Team            TeamOut `json:"team"`
	Played          int     `json:"played"`
	Won             int     `json:"won"`
	Drawn           int     `json:"drawn"`
	Lost            int     `json:"lost"`
	GoalsFor        int     `json:"goals_for"`
	GoalsAgainst    int     `json:"goals_against"`
	GoalsDifference int     `json:"goals_difference"`
	Points          int     `json:"points"`
}

type UserOut struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

type UserResult struct {
	Rank                      int     `json:"rank"`
	ID                        string  `json:"id"`
	Name                      string  `json:"name"`
	FullName                  string  `json:"full_name"`
	NumberMatchGuess          int     `json:"number_match_guess"`
	NumberScoreGuess          int     `json:"number_score_guess"`
	NumberQualifiedTeamsGuess int     `json:"number_qualified_teams_guess"`
	NumberFirstQualifiedGuess int     `json:"number_first_qualified_guess"`
	NumberQuarterFinalGuess   int     `json:"number_quarter_final_guess"`
	NumberSemiFinalGuess      int     `json:"number_semi_final_guess"`
	NumberFinalGuess          int     `json:"number_final_guess"`
	NumberWinnerGuess         int     `json:"number_winner_guess"`
	Points                    float64 `json:"points"`
}

func phaseOut(phase *models.Phase, lang string) PhaseOut {
	return PhaseOut{
		ID:          phase.ID,
		Code:        phase.Code,
		Description: phase.Description(lang),
		Index:       phase.Index,
	}
}

func groupOut(group *models.Group, lang string, withPhaseID bool) GroupOut {
	out := GroupOut{
		ID:          group.ID,
		Code:        group.Code,
		Description: group.Description(lang),
		Index:       group.Index,
	}
	if withPhaseID {
		out.PhaseID = group.PhaseID
	}
	return out
}

func teamOut(team *models.Team, lang string) TeamOut {
	return TeamOut{
		ID:          team.ID,
		Code:        team.Code,
		Description: team.Description(lang),
		Flag:        FlagOut{URL: team.FlagURL},
	}
}

func teamWithScoreOut(team *models.Team, score *int, lang string) *TeamWithScoreOut {
	if team == nil {
		return nil
	}
	return &TeamWithScoreOut{TeamOut: teamOut(team, lang), Score: score}
}

func teamWithWonOut(team *models.Team, won *bool, lang string) *TeamWithWonOut {
	if team == nil {
		return nil
	}
	return &TeamWithWonOut{TeamOut: teamOut(team, lang), Won: won}
}

func scoreBetOut(bet *models.ScoreBet, locked bool, lang string, withGroupID bool) ScoreBetOut {
	out := ScoreBetOut{
		ID:     bet.ID,
		Locked: locked,
		Index:  bet.Match.Index,
		Team1:  teamWithScoreOut(bet.Match.Team1, bet.Score1, lang),
		Team2:  teamWithScoreOut(bet.Match.Team2, bet.Score2, lang),
	}
	if withGroupID {
		out.GroupID = bet.Match.GroupID
	}
	return out
}

func binaryBetOut(bet *models.BinaryBet, locked bool, lang string, withGroupID bool) BinaryBetOut {
	won1, won2 := bet.WonPair()
	out := BinaryBetOut{
		ID:     bet.ID,
		Locked: locked,
		Index:  bet.Match.Index,
		Team1:  teamWithWonOut(bet.Match.Team1, won1, lang),
		Team2:  teamWithWonOut(bet.Match.Team2, won2, lang),
	}
	if withGroupID {
		out.GroupID = bet.Match.GroupID
	}
	return out
}

func groupRankOut(positions []models.GroupPosition, lang string) []GroupRankPositionOut {
	out := make([]GroupRankPositionOut, len(positions))
	for i := range positions {
		p := &positions[i]
		out[i] = GroupRankPositionOut{
			Team:            teamOut(&p.Team, lang),
			Played:          p.Played(),
			Won:             p.Won,
			Drawn:           p.Drawn,
			Lost:            p.Lost,
			GoalsFor:        p.GoalsFor,
			GoalsAgainst:    p.GoalsAgainst,
			GoalsDifference: p.GoalsDifference(),
			Points:          p.Points(),
		}
	}
	return out
}

func userResult(user *models.User) UserResult {
	return UserResult{
		ID:                        user.ID,
		Name:                      user.Name,
		FullName:                  user.FullName(),
		NumberMatchGuess:          user.NumberMatchGuess,
		NumberScoreGuess:          user.NumberScoreGuess,
		NumberQualifiedTeamsGuess: user.NumberQualifiedTeamsGuess,
		NumberFirstQualifiedGuess: user.NumberFirstQualifiedGuess,
		NumberQuarterFinalGuess:   user.NumberQuarterFinalGuess,
		NumberSemiFinalGuess:      user.NumberSemiFinalGuess,
		NumberFinalGuess:          user.NumberFinalGuess,
		NumberWinnerGuess:         user.NumberWinnerGuess,
		Points:                    user.Points,
	}
}
