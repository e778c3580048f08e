package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates the attempt state machine. submitted is terminal.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "in_progress"
	AttemptStatusSubmitted  AttemptStatus = "submitted"
)

// Attempt is one user's response session against a test. Answers holds one
// slot per question index; nil means unanswered. Score and Total are frozen
// at submission.
type Attempt struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	TestID      uuid.UUID     `json:"test_id"`
	Status      AttemptStatus `json:"status"`
	Answers     []any         `json:"answers"`
	Score       *int          `json:"score,omitempty"`
	Total       *int          `json:"total,omitempty"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// AnswerUpdate carries one answer slot update. The wire shape accepts
// several aliases for the same semantic payload; Resolve picks the value.
// Option is the deprecated single-letter multiple-choice encoding.
type AnswerUpdate struct {
	Q       *int     `json:"q" binding:"required,min=0"`
	Option  *string  `json:"option" binding:"omitempty,oneof=A B C D"`
	Index   *int     `json:"index"`
	Indices []int    `json:"indices"`
	Bool    *bool    `json:"bool"`
	Cloze   []string `json:"cloze"`
	Text    *string  `json:"text"`
	Match   []int    `json:"match"`
	Order   []int    `json:"order"`
	Value   any      `json:"value"`
}

// Resolve normalizes the aliases into one canonical answer value.
// Value wins when present; the legacy letter encoding maps A-D to 0-3.
func (u AnswerUpdate) Resolve() any {
	switch {
	case u.Value != nil:
		return u.Value
	case u.Option != nil:
		return map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}[*u.Option]
	case u.Index != nil:
		return *u.Index
	case u.Indices != nil:
		return u.Indices
	case u.Bool != nil:
		return *u.Bool
	case u.Cloze != nil:
		return u.Cloze
	case u.Text != nil:
		return *u.Text
	case u.Match != nil:
		return u.Match
	case u.Order != nil:
		return u.Order
	default:
		return nil
	}
}

// UpdateAnswersRequest is the payload for incremental answer updates.
type UpdateAnswersRequest struct {
	Answers []AnswerUpdate `json:"answers" binding:"required,min=1,dive"`
}
