package models

import (
	"time"
)

type DrawStatus string

const (
	DrawStatusNone      DrawStatus = "none"
	DrawStatusDraft     DrawStatus = "draft"
	DrawStatusConfirmed DrawStatus = "confirmed"
	DrawStatusReleased  DrawStatus = "released"
)

type ResultStatus string

const (
	ResultStatusNone      ResultStatus = "none"
	ResultStatusDraft     ResultStatus = "draft"
	ResultStatusConfirmed ResultStatus = "confirmed"
	ResultStatusReleased  ResultStatus = "released"
)

// Round is one round of a tournament
type Round struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TournamentID uint        `gorm:"not null;uniqueIndex:idx_round_seq" json:"tournament_id"`
	Tournament   *Tournament `gorm:"foreignKey:TournamentID" json:"tournament,omitempty"`
	Seq          int         `gorm:"not null;uniqueIndex:idx_round_seq" json:"seq"`
	Name         string      `gorm:"size:100;not null" json:"name"`
	DrawStatus   DrawStatus  `gorm:"size:20;not null;default:none" json:"draw_status"`
	StartsAt     *time.Time  `json:"starts_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (Round) TableName() string {
	return "rounds"
}

// Debate is one scheduled contest in a round
type Debate struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	RoundID      uint                `gorm:"not null;index" json:"round_id"`
	Round        *Round              `gorm:"foreignKey:RoundID" json:"round,omitempty"`
	AffTeamID    uint                `gorm:"not null;index" json:"aff_team_id"`
	AffTeam      *Team               `gorm:"foreignKey:AffTeamID" json:"aff_team,omitempty"`
	NegTeamID    uint                `gorm:"not null;index" json:"neg_team_id"`
	NegTeam      *Team               `gorm:"foreignKey:NegTeamID" json:"neg_team,omitempty"`
	VenueID      *uint               `gorm:"index" json:"venue_id"`
	Venue        *Venue              `gorm:"foreignKey:VenueID" json:"venue,omitempty"`
	Importance   int                 `gorm:"default:0" json:"importance"` // conventionally -2..2
	Bye          bool                `gorm:"default:false" json:"bye"`
	ResultStatus ResultStatus        `gorm:"size:20;not null;default:none" json:"result_status"`
	Adjudicators []DebateAdjudicator `gorm:"foreignKey:DebateID" json:"adjudicators,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (Debate) TableName() string {
	return "debates"
}

// UpdateImportanceRequest sets the importance of a debate
type UpdateImportanceRequest struct {
	Importance *int `json:"importance" binding:"required"`
}

// SaveVenuesRequest places debates of a round in venues
type SaveVenuesRequest struct {
	Debates []DebateVenueRequest `json:"debates" binding:"required,dive"`
}

// DebateVenueRequest is the requested venue of one debate; a null venue clears it
type DebateVenueRequest struct {
	DebateID uint  `json:"debate_id" binding:"required"`
	VenueID  *uint `json:"venue_id"`
}

// StartTimeRequest sets a round's start time as "HH:MM"
type StartTimeRequest struct {
	StartTime string `json:"start_time" binding:"required"`
}
