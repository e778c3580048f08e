package generator

import (
	"strings"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// sanitizeQuestions repairs the repairable and drops the rest. Model output
// that survives sanitization still has to pass model.Question.Validate; a
// question failing that gate is discarded silently rather than failing the
// whole batch. chunks provide source attribution for questions the model
// returned without one, assigned round-robin.
func sanitizeQuestions(raw []model.Question, chunks []ChunkInput) []model.Question {
	out := make([]model.Question, 0, len(raw))
	for i, q := range raw {
		q.Text = strings.TrimSpace(q.Text)
		q.Rationale = strings.TrimSpace(q.Rationale)

		switch q.Kind {
		case model.KindMCQ, model.KindMSQ:
			q.Options = dedupeStrings(q.Options)
			q.CorrectIndices = sanitizeIndices(q.CorrectIndices, len(q.Options))
			if q.Kind == model.KindMCQ && len(q.CorrectIndices) > 1 {
				q.CorrectIndices = q.CorrectIndices[:1]
			}
		case model.KindCloze:
			gaps := len(model.GapMarker.FindAllString(q.Text, -1))
			q.ClozeAnswers = trimStrings(q.ClozeAnswers)
			if gaps > 0 && len(q.ClozeAnswers) > gaps {
				q.ClozeAnswers = q.ClozeAnswers[:gaps]
			}
		case model.KindShort:
			q.AcceptableAnswers = dedupeAnswers(q.AcceptableAnswers)
		case model.KindMatch:
			q.MatchLeft = trimStrings(q.MatchLeft)
			q.MatchRight = trimStrings(q.MatchRight)
			if n := min(len(q.MatchLeft), len(q.MatchRight)); n != len(q.MatchLeft) || n != len(q.MatchRight) {
				q.MatchLeft = q.MatchLeft[:n]
				q.MatchRight = q.MatchRight[:n]
			}
		case model.KindOrder:
			q.OrderItems = trimStrings(q.OrderItems)
		}

		if q.Source == nil && len(chunks) > 0 {
			c := chunks[i%len(chunks)]
			q.Source = &model.QuestionSource{ChunkID: c.ChunkID, FileID: c.FileID}
		}

		if err := q.Validate(); err != nil {
			continue
		}
		out = append(out, q)
	}
	return out
}

// dedupeStrings trims entries, drops blanks, and keeps the first occurrence
// of each remaining value.
func dedupeStrings(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if _, dup := seen[x]; dup {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

// dedupeAnswers is dedupeStrings with case and whitespace folded, the same
// normalization scoring applies to free-text answers.
func dedupeAnswers(xs []string) []string {
	seen := make(map[string]struct{}, len(xs))
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		norm := strings.ToLower(strings.Join(strings.Fields(x), " "))
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, x)
	}
	return out
}

func trimStrings(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		out = append(out, x)
	}
	return out
}

// sanitizeIndices clamps indices into [0, optionCount) and drops duplicates,
// preserving order.
func sanitizeIndices(indices []int, optionCount int) []int {
	if optionCount == 0 {
		return nil
	}
	seen := make(map[int]struct{}, len(indices))
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 {
			idx = 0
		} else if idx >= optionCount {
			idx = optionCount - 1
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}
