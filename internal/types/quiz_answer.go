package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizAnswer is the current answer for one question of one session. The
// unique (session_id, question_id) index backs the last-write-wins upsert.
type QuizAnswer struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_answer_session_question" json:"session_id"`
	Session    *QuizSession   `gorm:"constraint:OnDelete:CASCADE;foreignKey:SessionID;references:ID" json:"session,omitempty"`
	QuestionID string         `gorm:"column:question_id;not null;uniqueIndex:idx_quiz_answer_session_question" json:"question_id"`
	ChoiceIDs  datatypes.JSON `gorm:"type:jsonb;column:choice_ids" json:"choice_ids"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (QuizAnswer) TableName() string { return "quiz_answer" }
