package models

// GroupPosition holds one user's running standings for one team of a group,
// derived exclusively from that user's score bets. Base counters are stored;
// played, goals difference and points are always recomputed on read.
type GroupPosition struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"type:uuid;not null;uniqueIndex:uq_group_position_user_group_team" json:"user_id"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:uq_group_position_user_group_team" json:"group_id"`
	TeamID  string `gorm:"type:uuid;not null;uniqueIndex:uq_group_position_user_group_team" json:"team_id"`

	Won          int `gorm:"not null;default:0;check:won >= 0" json:"won"`
	Drawn        int `gorm:"not null;default:0;check:drawn >= 0" json:"drawn"`
	Lost         int `gorm:"not null;default:0;check:lost >= 0" json:"lost"`
	GoalsFor     int `gorm:"not null;default:0;check:goals_for >= 0" json:"goals_for"`
	GoalsAgainst int `gorm:"not null;default:0;check:goals_against >= 0" json:"goals_against"`

	NeedRecomputation bool `gorm:"not null;default:false" json:"-"`

	Team Team `json:"-" gorm:"foreignKey:TeamID"`
}

func (p *GroupPosition) Played() int {
	return p.Won + p.Drawn + p.Lost
}

func (p *GroupPosition) GoalsDifference() int {
	return p.GoalsFor - p.GoalsAgainst
}

func (p *GroupPosition) Points() int {
	return p.Won*3 + p.Drawn
}
