package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONB for PostgreSQL JSON support
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported JSONB source type")
	}
	return json.Unmarshal(bytes, j)
}

type ActionType string

const (
	ActionAdjudicatorsAutoAllocate ActionType = "ADJUDICATORS_AUTO"
	ActionAdjudicatorsSave         ActionType = "ADJUDICATORS_SAVE"
	ActionDrawConfirm              ActionType = "DRAW_CONFIRM"
	ActionDrawRelease              ActionType = "DRAW_RELEASE"
	ActionDrawUnrelease            ActionType = "DRAW_UNRELEASE"
	ActionDebateImportanceEdit     ActionType = "DEBATE_IMPORTANCE_EDIT"
	ActionAvailabilitySave         ActionType = "AVAILABILITY_SAVE"
	ActionVenuesSave               ActionType = "VENUES_SAVE"
	ActionRoundStartTimeSet        ActionType = "ROUND_START_TIME_SET"
	ActionDivisionsAllocate        ActionType = "DIVISIONS_ALLOCATE"
	ActionDivisionsSave            ActionType = "DIVISIONS_SAVE"
	ActionTestScoreEdit            ActionType = "TEST_SCORE_EDIT"
	ActionAdjudicatorNoteEdit      ActionType = "ADJUDICATOR_NOTE_EDIT"
)

// ActionLog records admin actions for audit trail
type ActionLog struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	TournamentID uint       `gorm:"not null;index" json:"tournament_id"`
	RoundID      *uint      `gorm:"index" json:"round_id"`
	Type         ActionType `gorm:"size:50;not null;index" json:"type"`
	Actor        string     `gorm:"size:100" json:"actor"`
	Details      JSONB      `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (ActionLog) TableName() string {
	return "action_logs"
}
