package models

import (
	"time"

	"github.com/google/uuid"
)

// AllocationRun records one automatic adjudicator allocation of a round
type AllocationRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoundID   uint      `gorm:"not null;index" json:"round_id"`
	Debates   int       `gorm:"not null" json:"debates"`
	Unfilled  int       `gorm:"not null" json:"unfilled"`
	Unused    int       `gorm:"not null" json:"unused"`
	Cost      float64   `gorm:"not null" json:"cost"`
	Actor     string    `gorm:"size:100" json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

func (AllocationRun) TableName() string {
	return "allocation_runs"
}

// AdjudicatorRef is how adjudicators appear in allocation payloads
type AdjudicatorRef struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IsTrainee bool   `json:"is_trainee"`
}

// NewAdjudicatorRef builds the payload reference for an adjudicator
func NewAdjudicatorRef(a *Adjudicator) AdjudicatorRef {
	return AdjudicatorRef{ID: a.ID, Name: a.DisplayName(), IsTrainee: a.IsTrainee}
}

// DebatePanel is the panel of one debate in allocation payloads
type DebatePanel struct {
	Chair    *AdjudicatorRef  `json:"chair,omitempty"`
	Panel    []AdjudicatorRef `json:"panel"`
	Trainees []AdjudicatorRef `json:"trainees"`
}

// AllocationResponse maps debate IDs to panels and lists unused adjudicators
type AllocationResponse struct {
	Debates  map[uint]DebatePanel `json:"debates"`
	Unused   []AdjudicatorRef     `json:"unused"`
	Unfilled []uint               `json:"unfilled,omitempty"`
	RunID    *uuid.UUID           `json:"run_id,omitempty"`
}

// SaveAllocationRequest replaces the panels of the listed debates
type SaveAllocationRequest struct {
	Debates []DebatePanelRequest `json:"debates" binding:"required,dive"`
}

// DebatePanelRequest is the requested panel for one debate
type DebatePanelRequest struct {
	DebateID   uint   `json:"debate_id" binding:"required"`
	ChairID    *uint  `json:"chair_id"`
	PanelIDs   []uint `json:"panel_ids"`
	TraineeIDs []uint `json:"trainee_ids"`
}

// ConflictsResponse lists, per adjudicator, conflicted teams and teams seen in earlier rounds
type ConflictsResponse struct {
	Conflict map[uint][]uint `json:"conflict"`
	History  map[uint][]uint `json:"history"`
}
