package models

// Match is a per-user clone of a MatchReference. Team slots start equal to the
// reference's and may later be rewritten by the knockout derivation rule.
type Match struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:uq_match_user_group_index" json:"user_id"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:uq_match_user_group_index" json:"group_id"`
	Index   int    `gorm:"not null;uniqueIndex:uq_match_user_group_index" json:"index"`

	Team1ID *string `gorm:"type:uuid" json:"team1_id"`
	Team2ID *string `gorm:"type:uuid" json:"team2_id"`

	Group Group `json:"-" gorm:"foreignKey:GroupID"`
	Team1 *Team `json:"-" gorm:"foreignKey:Team1ID"`
	Team2 *Team `json:"-" gorm:"foreignKey:Team2ID"`

	ScoreBets  []ScoreBet  `json:"-" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
	BinaryBets []BinaryBet `json:"-" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

// BetState classifies a score pair.
type BetState int

const (
	StateAnyNone BetState = iota
	StateOneWin
	StateDrawn
	StateTwoWin
)

// ScoreBet is a numeric goal prediction for both teams. A nil score means
// "not predicted".
type ScoreBet struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID string `gorm:"type:uuid;not null;index" json:"match_id"`
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`

	Score1 *int `gorm:"check:score1 >= 0" json:"score1"`
	Score2 *int `gorm:"check:score2 >= 0" json:"score2"`

	Match Match `json:"-" gorm:"foreignKey:MatchID"`
}

// ClassifyScores maps a score pair to its bet state.
func ClassifyScores(score1, score2 *int) BetState {
	switch {
	case score1 == nil || score2 == nil:
		return StateAnyNone
	case *score1 > *score2:
		return StateOneWin
	case *score1 == *score2:
		return StateDrawn
	default:
		return StateTwoWin
	}
}

func (b *ScoreBet) State() BetState {
	return ClassifyScores(b.Score1, b.Score2)
}

func (b *ScoreBet) IsComplete() bool {
	return b.Score1 != nil && b.Score2 != nil
}

// IsSameResult reports whether both bets agree on which of win/draw/loss they
// encode. A missing score on either side disqualifies.
func (b *ScoreBet) IsSameResult(other *ScoreBet) bool {
	state := b.State()
	return state != StateAnyNone && state == other.State()
}

func (b *ScoreBet) IsSameScore(other *ScoreBet) bool {
	return b.IsComplete() && other.IsComplete() &&
		*b.Score1 == *other.Score1 && *b.Score2 == *other.Score2
}

// BinaryBet is a three-valued prediction of which side wins.
type BinaryBet struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID string `gorm:"type:uuid;not null;index" json:"match_id"`
	UserID  string `gorm:"type:uuid;not null;index" json:"user_id"`

	IsOneWon *bool `json:"is_one_won"`

	Match Match `json:"-" gorm:"foreignKey:MatchID"`
}

// WonPair derives the (team1_won, team2_won) view. Both are nil while the bet
// is undecided.
func (b *BinaryBet) WonPair() (*bool, *bool) {
	if b.IsOneWon == nil {
		return nil, nil
	}
	team1 := *b.IsOneWon
	team2 := !team1
	return &team1, &team2
}
