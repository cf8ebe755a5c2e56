package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionStatusOpen      = "open"
	SessionStatusCompleted = "completed"
)

// QuizSession is one quiz attempt. It belongs to a user (bearer callers) or
// to an anonymous token (client-generated id); exactly one of the two is set.
// IDs are generated in Go so the schema ports to sqlite unchanged.
type QuizSession struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	AnonToken   string     `gorm:"column:anon_token;index" json:"anon_token,omitempty"`
	Status      string     `gorm:"column:status;not null;index" json:"status"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (QuizSession) TableName() string { return "quiz_session" }
