package domain

import "time"

// RecordKind tags a history record at the mapping boundary so "can this be
// deleted or deep-linked" is answered once, not re-derived in view code.
type RecordKind string

const (
	// RecordLinked records carry at least one server identifier. Deleting
	// uses the profile id when present, the session id otherwise;
	// deep-linking additionally requires a profile id.
	RecordLinked RecordKind = "linked"
	// RecordLegacy records predate profile linkage and are identifiable
	// only by their answer snapshot. They cannot be deleted or deep-linked.
	RecordLegacy RecordKind = "legacy"
)

// AnswerEntry is one line of the immutable answer snapshot a history record
// was produced from.
type AnswerEntry struct {
	QuestionID string   `json:"questionId"`
	ChoiceIDs  []string `json:"choiceIds"`
}

// HistoryRecord is one completed session as the history surface shows it.
// Answers is always present, even when Profile and Summary are nil.
type HistoryRecord struct {
	Kind            RecordKind       `json:"kind"`
	SessionID       string           `json:"sessionId"`
	CompletedAt     time.Time        `json:"completedAt"`
	ProfileID       string           `json:"profileId"`
	Profile         *Profile         `json:"profile"`
	Summary         *ResultSummary   `json:"summary"`
	Recommendations []Recommendation `json:"recommendations"`
	Answers         []AnswerEntry    `json:"answers"`
}

// DeleteIdentifier returns the identifier a delete call must use: the
// profile id when present, else the session id. ok is false for legacy
// records, which expose neither.
func (r HistoryRecord) DeleteIdentifier() (string, bool) {
	if r.ProfileID != "" {
		return r.ProfileID, true
	}
	if r.SessionID != "" {
		return r.SessionID, true
	}
	return "", false
}

// CanOpenDetail reports whether the record can be deep-linked; detail
// lookups are keyed by profile id.
func (r HistoryRecord) CanOpenDetail() bool { return r.ProfileID != "" }

// DeleteReceipt is the delete response. WasLatest true means the caller's
// cached "current latest profile" is stale and must be re-fetched; the
// receipt does not say what the new latest is.
type DeleteReceipt struct {
	OK        bool `json:"ok"`
	WasLatest bool `json:"wasLatest"`
}
