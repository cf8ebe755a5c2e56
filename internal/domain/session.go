// Package domain holds the client-side view of quiz entities. Wire shapes
// never cross into this package: the transport layer maps every payload into
// these types with all fields populated.
package domain

import "time"

// Session is one server-tracked quiz attempt. Immutable once created;
// answers and the finalize call reference it by id.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
}

// Answer is a write-only submission. Nothing is persisted client-side
// beyond what is sent.
type Answer struct {
	SessionID  string   `json:"sessionId"`
	QuestionID string   `json:"questionId"`
	ChoiceIDs  []string `json:"choiceIds"`
}

type SessionStatus string

const (
	SessionOpen      SessionStatus = "open"
	SessionCompleted SessionStatus = "completed"
)

// SessionDetail is the server's view of one attempt, used to re-open an
// in-progress session after a reload.
type SessionDetail struct {
	Session     Session       `json:"session"`
	Status      SessionStatus `json:"status"`
	CompletedAt *time.Time    `json:"completedAt"`
	Answers     []AnswerEntry `json:"answers"`
}
