package models

// BetKind discriminates which bet type materialises for a match reference.
type BetKind string

const (
	BetKindScore  BetKind = "SCORE"
	BetKindBinary BetKind = "BINARY"
)

// Phase is a level of competition structure, e.g. "GROUP" or "FINAL".
// Catalog entities are loaded once from seed data and never mutated afterwards.
type Phase struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Code          string `gorm:"uniqueIndex;size:10;not null" json:"code"`
	DescriptionFr string `gorm:"size:100;not null" json:"-"`
	DescriptionEn string `gorm:"size:100;not null" json:"-"`
	Index         int    `gorm:"not null" json:"index"`
}

// Group belongs to a phase and contains ordered matches. The code is unique
// across the whole competition ("A".."H" for pools, "8", "4", "2", "1" for
// knockout rounds).
type Group struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Code          string `gorm:"uniqueIndex;size:10;not null" json:"code"`
	DescriptionFr string `gorm:"size:100;not null" json:"-"`
	DescriptionEn string `gorm:"size:100;not null" json:"-"`
	Index         int    `gorm:"not null" json:"index"`

	PhaseID string `gorm:"type:uuid;not null;index" json:"phase_id"`
	Phase   Phase  `json:"-" gorm:"foreignKey:PhaseID"`
}

// Team is a competing side, identified by an ISO 3166-1 alpha-2 style code.
type Team struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	Code          string `gorm:"uniqueIndex;size:10;not null" json:"code"`
	DescriptionFr string `gorm:"size:100;not null" json:"-"`
	DescriptionEn string `gorm:"size:100;not null" json:"-"`
	FlagURL       string `gorm:"size:300" json:"flag_url"`
}

// MatchReference is the competition-wide canonical match cloned per user at
// signup. Team slots may be null for knockout matches whose participants are
// only known once the knockout rule has run.
type MatchReference struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:uq_match_reference_group_index" json:"group_id"`
	Index   int    `gorm:"not null;uniqueIndex:uq_match_reference_group_index" json:"index"`

	Team1ID *string `gorm:"type:uuid" json:"team1_id"`
	Team2ID *string `gorm:"type:uuid" json:"team2_id"`

	BetKind BetKind `gorm:"size:16;not null" json:"bet_kind"`

	Group Group `json:"-" gorm:"foreignKey:GroupID"`
}

// Description returns the display text for the requested language.
// Falls back to English for anything that is not French.
func (p *Phase) Description(lang string) string {
	if lang == "fr" {
		return p.DescriptionFr
	}
	return p.DescriptionEn
}

func (g *Group) Description(lang string) string {
	if lang == "fr" {
		return g.DescriptionFr
	}
	return g.DescriptionEn
}

func (t *Team) Description(lang string) string {
	if lang == "fr" {
		return t.DescriptionFr
	}
	return t.DescriptionEn
}
