package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// QuestionKind discriminates the question tagged union.
type QuestionKind string

const (
	KindMCQ   QuestionKind = "mcq"
	KindMSQ   QuestionKind = "msq"
	KindTF    QuestionKind = "tf"
	KindCloze QuestionKind = "cloze"
	KindShort QuestionKind = "short"
	KindMatch QuestionKind = "match"
	KindOrder QuestionKind = "order"
)

// AllQuestionKinds lists every supported kind.
var AllQuestionKinds = []QuestionKind{
	KindMCQ, KindMSQ, KindTF, KindCloze, KindShort, KindMatch, KindOrder,
}

// GapMarker matches cloze gap placeholders: {{gap1}}, {{gap2}}, ...
var GapMarker = regexp.MustCompile(`\{\{gap\d+\}\}`)

// QuestionSource records where a question was generated from.
type QuestionSource struct {
	ChunkID string `json:"chunkId,omitempty"`
	FileID  string `json:"fileId,omitempty"`
}

// Question is the tagged union spanning all seven kinds. Only the fields
// belonging to the Kind are populated; Validate enforces the per-kind shape.
// Field names are camelCase on the wire to stay compatible with the stored
// JSONB payload and the AI structured-output schema.
type Question struct {
	Kind      QuestionKind    `json:"kind"`
	Text      string          `json:"text"`
	Rationale string          `json:"rationale,omitempty"`
	Source    *QuestionSource `json:"source,omitempty"`

	Options        []string `json:"options,omitempty"`        // mcq, msq
	CorrectIndices []int    `json:"correctIndices,omitempty"` // mcq (1 entry), msq (>=1)

	CorrectBool       *bool    `json:"correctBool,omitempty"`       // tf
	ClozeAnswers      []string `json:"clozeAnswers,omitempty"`      // cloze
	AcceptableAnswers []string `json:"acceptableAnswers,omitempty"` // short
	MatchLeft         []string `json:"matchLeft,omitempty"`         // match; left[i] pairs with right[i]
	MatchRight        []string `json:"matchRight,omitempty"`
	OrderItems        []string `json:"orderItems,omitempty"` // order; stored sequence is the answer key
}

// Validate checks the question against its kind's structural rules.
func (q Question) Validate() error {
	if len(strings.TrimSpace(q.Text)) < 8 {
		return errors.New("question text too short")
	}

	switch q.Kind {
	case KindMCQ:
		if err := validateOptions(q.Options); err != nil {
			return err
		}
		if len(q.CorrectIndices) != 1 {
			return errors.New("mcq requires exactly one correct index")
		}
		return validateIndices(q.CorrectIndices, len(q.Options))

	case KindMSQ:
		if err := validateOptions(q.Options); err != nil {
			return err
		}
		if len(q.CorrectIndices) == 0 {
			return errors.New("msq requires at least one correct index")
		}
		if hasDuplicateInts(q.CorrectIndices) {
			return errors.New("msq correct indices must be unique")
		}
		return validateIndices(q.CorrectIndices, len(q.Options))

	case KindTF:
		if q.CorrectBool == nil {
			return errors.New("tf requires correctBool")
		}
		return nil

	case KindCloze:
		gaps := len(GapMarker.FindAllString(q.Text, -1))
		if gaps == 0 {
			return errors.New("cloze text has no gap markers")
		}
		if len(q.ClozeAnswers) == 0 {
			return errors.New("cloze requires at least one answer")
		}
		if len(q.ClozeAnswers) > gaps {
			return fmt.Errorf("cloze has %d answers for %d gaps", len(q.ClozeAnswers), gaps)
		}
		return nil

	case KindShort:
		if len(q.AcceptableAnswers) == 0 {
			return errors.New("short requires at least one acceptable answer")
		}
		seen := make(map[string]struct{}, len(q.AcceptableAnswers))
		for _, a := range q.AcceptableAnswers {
			norm := strings.ToLower(strings.TrimSpace(a))
			if norm == "" {
				return errors.New("short acceptable answer is blank")
			}
			if _, dup := seen[norm]; dup {
				return errors.New("short acceptable answers must be unique")
			}
			seen[norm] = struct{}{}
		}
		return nil

	case KindMatch:
		if len(q.MatchLeft) < 2 || len(q.MatchLeft) != len(q.MatchRight) {
			return errors.New("match requires equal-length sides of at least 2")
		}
		return nil

	case KindOrder:
		if len(q.OrderItems) < 3 {
			return errors.New("order requires at least 3 items")
		}
		return nil

	default:
		return fmt.Errorf("unknown question kind %q", q.Kind)
	}
}

func validateOptions(options []string) error {
	if len(options) < 2 {
		return errors.New("requires at least two options")
	}
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if _, dup := seen[o]; dup {
			return errors.New("options must be unique")
		}
		seen[o] = struct{}{}
	}
	return nil
}

func validateIndices(indices []int, optionCount int) error {
	for _, i := range indices {
		if i < 0 || i >= optionCount {
			return fmt.Errorf("correct index %d out of range [0,%d)", i, optionCount)
		}
	}
	return nil
}

func hasDuplicateInts(xs []int) bool {
	seen := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		if _, dup := seen[x]; dup {
			return true
		}
		seen[x] = struct{}{}
	}
	return false
}

// RedactQuestions strips the answer key from questions before they are
// served to a test taker. Options and match/order item lists stay visible;
// correct indices, booleans and answer lists do not.
func RedactQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		r := Question{
			Kind:      q.Kind,
			Text:      q.Text,
			Rationale: q.Rationale,
			Source:    q.Source,
		}
		switch q.Kind {
		case KindMCQ, KindMSQ:
			r.Options = q.Options
		case KindMatch:
			r.MatchLeft = q.MatchLeft
			r.MatchRight = q.MatchRight
		case KindOrder:
			r.OrderItems = q.OrderItems
		}
		out[i] = r
	}
	return out
}
