package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Adjudicator is a person eligible to judge
type Adjudicator struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	TournamentID  uint            `gorm:"not null;index" json:"tournament_id"`
	InstitutionID uint            `gorm:"not null;index" json:"institution_id"`
	Institution   *Institution    `gorm:"foreignKey:InstitutionID" json:"institution,omitempty"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	TestScore     decimal.Decimal `gorm:"type:decimal(6,2);default:0" json:"test_score"`
	IsTrainee     bool            `gorm:"default:false" json:"is_trainee"`
	Breaking      bool            `gorm:"default:false" json:"breaking"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Adjudicator) TableName() string {
	return "adjudicators"
}

// DisplayName returns "Name (CODE)"
func (a Adjudicator) DisplayName() string {
	if a.Institution == nil {
		return a.Name
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Institution.Code)
}

type AdjudicatorPosition string

const (
	PositionChair    AdjudicatorPosition = "chair"
	PositionPanelist AdjudicatorPosition = "panelist"
	PositionTrainee  AdjudicatorPosition = "trainee"
)

// DebateAdjudicator places an adjudicator on a debate in one role
type DebateAdjudicator struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	DebateID      uint                `gorm:"not null;index" json:"debate_id"`
	Debate        *Debate             `gorm:"foreignKey:DebateID" json:"debate,omitempty"`
	AdjudicatorID uint                `gorm:"not null;index" json:"adjudicator_id"`
	Adjudicator   *Adjudicator        `gorm:"foreignKey:AdjudicatorID" json:"adjudicator,omitempty"`
	Position      AdjudicatorPosition `gorm:"size:20;not null" json:"position"`
}

func (DebateAdjudicator) TableName() string {
	return "debate_adjudicators"
}

// AdjudicatorConflict forbids an adjudicator from judging a team
type AdjudicatorConflict struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AdjudicatorID uint `gorm:"not null;index" json:"adjudicator_id"`
	TeamID        uint `gorm:"not null;index" json:"team_id"`
}

func (AdjudicatorConflict) TableName() string {
	return "adjudicator_conflicts"
}

// AdjudicatorInstitutionConflict forbids an adjudicator from judging any team of an institution
type AdjudicatorInstitutionConflict struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	AdjudicatorID uint `gorm:"not null;index" json:"adjudicator_id"`
	InstitutionID uint `gorm:"not null;index" json:"institution_id"`
}

func (AdjudicatorInstitutionConflict) TableName() string {
	return "adjudicator_institution_conflicts"
}

// ActiveAdjudicator marks an adjudicator as available in a round
type ActiveAdjudicator struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	RoundID       uint `gorm:"not null;uniqueIndex:idx_active_adj" json:"round_id"`
	AdjudicatorID uint `gorm:"not null;uniqueIndex:idx_active_adj" json:"adjudicator_id"`
}

func (ActiveAdjudicator) TableName() string {
	return "active_adjudicators"
}

// AdjudicatorTestScoreHistory records every change of an adjudicator's test score
type AdjudicatorTestScoreHistory struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AdjudicatorID uint            `gorm:"not null;index" json:"adjudicator_id"`
	RoundID       *uint           `gorm:"index" json:"round_id"`
	Score         decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"score"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (AdjudicatorTestScoreHistory) TableName() string {
	return "adjudicator_test_score_history"
}

// SetTestScoreRequest sets an adjudicator's test score
type SetTestScoreRequest struct {
	Score   *decimal.Decimal `json:"score" binding:"required"`
	RoundID *uint            `json:"round_id"`
}

// SetNoteRequest replaces an adjudicator's notes
type SetNoteRequest struct {
	Note string `json:"note"`
}

// AvailabilityRequest replaces the set of adjudicators available in a round
type AvailabilityRequest struct {
	AdjudicatorIDs []uint `json:"adjudicator_ids"`
}

// AdjudicatorScore is a row of the adjudicator score listing
type AdjudicatorScore struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	TestScore decimal.Decimal `json:"test_score"`
	IsTrainee bool            `json:"is_trainee"`
	Breaking  bool            `json:"breaking"`
	Notes     string          `json:"notes"`
	Debates   int             `json:"debates"`
}
