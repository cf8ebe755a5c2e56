package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SkinProfile is the durable outcome of an authenticated finalize. At most
// one row per user has is_latest=true; deleting the latest promotes the
// newest remaining row.
type SkinProfile struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID     *uuid.UUID     `gorm:"type:uuid;index" json:"session_id,omitempty"`
	Session       *QuizSession   `gorm:"constraint:OnDelete:SET NULL;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	SkinType      string         `gorm:"column:skin_type" json:"skin_type"`
	Concerns      datatypes.JSON `gorm:"type:jsonb" json:"concerns"`
	Sensitivities datatypes.JSON `gorm:"type:jsonb" json:"sensitivities"`
	Restrictions  datatypes.JSON `gorm:"type:jsonb" json:"restrictions"`
	Budget        string         `json:"budget"`
	IsLatest      bool           `gorm:"column:is_latest;not null;index" json:"is_latest"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (SkinProfile) TableName() string { return "skin_profile" }
