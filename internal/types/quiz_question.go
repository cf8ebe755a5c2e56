package types

import (
	"time"

	"gorm.io/datatypes"
)

// QuizQuestion is a catalog row. IDs are human-readable slugs from the seed
// file; Choices holds the ordered choice list as JSON.
type QuizQuestion struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Prompt    string         `gorm:"not null" json:"prompt"`
	Category  string         `gorm:"not null;index" json:"category"`
	IsMulti   bool           `gorm:"column:is_multi;not null" json:"is_multi"`
	Required  bool           `gorm:"not null" json:"required"`
	SortOrder int            `gorm:"column:sort_order;not null;index" json:"sort_order"`
	Choices   datatypes.JSON `gorm:"type:jsonb" json:"choices"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

// QuestionChoice is the JSON shape stored in QuizQuestion.Choices.
type QuestionChoice struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
}
