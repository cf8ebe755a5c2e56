package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizResult stores the scored outcome of a finalized session: the summary
// JSON plus bookkeeping. One result per session; replaying finalize returns
// this row instead of rescoring.
type QuizResult struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"session_id"`
	Session          *QuizSession   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	ProfileID        *uuid.UUID     `gorm:"type:uuid;index" json:"profile_id,omitempty"`
	Profile          *SkinProfile   `gorm:"constraint:OnDelete:SET NULL;foreignKey:ProfileID;references:ID" json:"profile,omitempty"`
	Summary          datatypes.JSON `gorm:"type:jsonb" json:"summary"`
	StrategyNotes    datatypes.JSON `gorm:"type:jsonb;column:strategy_notes" json:"strategy_notes"`
	AlgorithmVersion string         `gorm:"column:algorithm_version;not null" json:"algorithm_version"`
	GeneratedAt      time.Time      `gorm:"not null" json:"generated_at"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (QuizResult) TableName() string { return "quiz_result" }
