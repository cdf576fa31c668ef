package models

import (
	"fmt"
	"time"
)

// Tournament is the top-level container for rounds, teams and adjudicators
type Tournament struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tournament) TableName() string {
	return "tournaments"
}

// Institution is a university or club teams and adjudicators belong to
type Institution struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null" json:"name"`
	Code string `gorm:"size:20;uniqueIndex;not null" json:"code"` // short code, e.g. "SYD"
}

func (Institution) TableName() string {
	return "institutions"
}

// Team is a competing team
type Team struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	TournamentID  uint         `gorm:"not null;index" json:"tournament_id"`
	InstitutionID uint         `gorm:"not null;index" json:"institution_id"`
	Institution   *Institution `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Reference     string       `gorm:"size:100;not null" json:"reference"`
	DivisionID    *uint        `gorm:"index" json:"division_id"`
	Division      *Division    `gorm:"foreignKey:DivisionID" json:"division,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (Team) TableName() string {
	return "teams"
}

// DisplayName returns "<institution code> <reference>"
func (t Team) DisplayName() string {
	if t.Institution == nil {
		return t.Reference
	}
	return fmt.Sprintf("%s %s", t.Institution.Code, t.Reference)
}
