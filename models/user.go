package models

import (
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"

	// AdminName is the reserved account whose bets hold the official results.
	AdminName = "admin"
)

// User is a registered player. The aggregate counters and points are
// overwritten by each run of the point-scoring rule.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	FirstName    string `gorm:"size:100;not null" json:"first_name"`
	LastName     string `gorm:"size:100;not null" json:"last_name"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Role         string `gorm:"size:16;not null;default:'USER'" json:"role"`

	NumberMatchGuess          int `gorm:"not null;default:0;check:number_match_guess >= 0" json:"number_match_guess"`
	NumberScoreGuess          int `gorm:"not null;default:0;check:number_score_guess >= 0" json:"number_score_guess"`
	NumberQualifiedTeamsGuess int `gorm:"not null;default:0;check:number_qualified_teams_guess >= 0" json:"number_qualified_teams_guess"`
	NumberFirstQualifiedGuess int `gorm:"not null;default:0;check:number_first_qualified_guess >= 0" json:"number_first_qualified_guess"`
	NumberQuarterFinalGuess   int `gorm:"not null;default:0;check:number_quarter_final_guess >= 0" json:"number_quarter_final_guess"`
	NumberSemiFinalGuess      int `gorm:"not null;default:0;check:number_semi_final_guess >= 0" json:"number_semi_final_guess"`
	NumberFinalGuess          int `gorm:"not null;default:0;check:number_final_guess >= 0" json:"number_final_guess"`
	NumberWinnerGuess         int `gorm:"not null;default:0;check:number_winner_guess >= 0" json:"number_winner_guess"`

	Points float64 `gorm:"not null;default:0;check:points >= 0" json:"points"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Matches []Match `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
