// Package scoring grades submitted answers against the question answer key.
// Scoring is total: any answer whose shape does not match the question kind
// scores 0, it never errors.
package scoring

import (
	"sort"
	"strings"

	"github.com/studyvault/studyvault-backend/internal/model"
)

// Legacy single-letter multiple-choice encoding. The numeric index is the
// canonical wire form; letters survive only as a compatibility shim for the
// deprecated single-answer format.
var letterIndex = map[string]int{"A": 0, "B": 1, "C": 2, "D": 3}

// ScoreOne grades a single question. Returns 1 for a correct answer, 0 for
// anything else, including nil and malformed answers.
func ScoreOne(q model.Question, ans any) int {
	switch q.Kind {
	case model.KindMCQ:
		idx, ok := answerIndex(ans)
		if !ok || len(q.CorrectIndices) != 1 {
			return 0
		}
		return boolScore(q.CorrectIndices[0] == idx)

	case model.KindMSQ:
		got, ok := intSlice(ans)
		if !ok || len(q.CorrectIndices) == 0 {
			return 0
		}
		return boolScore(sortedEqual(got, q.CorrectIndices))

	case model.KindTF:
		b, ok := ans.(bool)
		if !ok || q.CorrectBool == nil {
			return 0
		}
		return boolScore(b == *q.CorrectBool)

	case model.KindCloze:
		got, ok := stringSlice(ans)
		if !ok || len(got) != len(q.ClozeAnswers) || len(got) == 0 {
			return 0
		}
		for i := range got {
			if norm(got[i]) != norm(q.ClozeAnswers[i]) {
				return 0
			}
		}
		return 1

	case model.KindShort:
		s, ok := ans.(string)
		if !ok {
			return 0
		}
		for _, acc := range q.AcceptableAnswers {
			if norm(s) == norm(acc) {
				return 1
			}
		}
		return 0

	case model.KindMatch:
		got, ok := intSlice(ans)
		if !ok || len(got) != len(q.MatchLeft) || len(got) == 0 {
			return 0
		}
		return boolScore(isIdentity(got))

	case model.KindOrder:
		got, ok := intSlice(ans)
		if !ok || len(got) != len(q.OrderItems) || len(got) == 0 {
			return 0
		}
		return boolScore(isIdentity(got))

	default:
		return 0
	}
}

// ScoreAll grades answer slot i against question i and returns the total.
// Missing slots count as unanswered.
func ScoreAll(questions []model.Question, answers []any) int {
	score := 0
	for i, q := range questions {
		var ans any
		if i < len(answers) {
			ans = answers[i]
		}
		score += ScoreOne(q, ans)
	}
	return score
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func boolScore(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

// answerIndex normalizes an mcq answer to a numeric option index, accepting
// the legacy letter encoding A-D.
func answerIndex(ans any) (int, bool) {
	switch v := ans.(type) {
	case string:
		idx, ok := letterIndex[v]
		return idx, ok
	default:
		return toInt(ans)
	}
}

// toInt accepts the numeric types a JSON round trip can produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// intSlice converts []int, []any-of-numbers or []float64 (post-JSON) forms.
func intSlice(ans any) ([]int, bool) {
	switch v := ans.(type) {
	case []int:
		return v, true
	case []float64:
		out := make([]int, len(v))
		for i, f := range v {
			n, ok := toInt(f)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	case []any:
		out := make([]int, len(v))
		for i, e := range v {
			n, ok := toInt(e)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

func stringSlice(ans any) ([]string, bool) {
	switch v := ans.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func isIdentity(xs []int) bool {
	for i, x := range xs {
		if x != i {
			return false
		}
	}
	return true
}
