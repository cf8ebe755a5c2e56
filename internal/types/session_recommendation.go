package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SessionRecommendation is one ranked product of a session's result. Rank is
// 1-based and unique per session; rows are served in rank order and never
// re-sorted downstream.
type SessionRecommendation struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_session_rec_rank" json:"session_id"`
	Session     *QuizSession   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	ProductID   string         `gorm:"column:product_id;not null;index" json:"product_id"`
	Product     *Product       `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
	Rank        int            `gorm:"not null;uniqueIndex:idx_session_rec_rank" json:"rank"`
	Score       float64        `gorm:"not null" json:"score"`
	Ingredients datatypes.JSON `gorm:"type:jsonb" json:"ingredients"`
	Rationale   datatypes.JSON `gorm:"type:jsonb" json:"rationale"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (SessionRecommendation) TableName() string { return "session_recommendation" }
