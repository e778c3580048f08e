package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyvault/studyvault-backend/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestSanitizeQuestions_RepairsOptionsAndIndices(t *testing.T) {
	in := []model.Question{{
		Kind:           model.KindMCQ,
		Text:           "  Which protocol is stateless?  ",
		Options:        []string{" HTTP ", "HTTP", "TCP", "", "UDP"},
		CorrectIndices: []int{0, 0, 7},
	}}

	out := sanitizeQuestions(in, testChunks())

	require.Len(t, out, 1)
	q := out[0]
	assert.Equal(t, "Which protocol is stateless?", q.Text)
	assert.Equal(t, []string{"HTTP", "TCP", "UDP"}, q.Options)
	assert.Equal(t, []int{0}, q.CorrectIndices)
}

func TestSanitizeQuestions_MSQClampsIndicesIntoBounds(t *testing.T) {
	in := []model.Question{{
		Kind:           model.KindMSQ,
		Text:           "Select the transport protocols.",
		Options:        []string{"TCP", "UDP", "JSON"},
		CorrectIndices: []int{1, 0, 1, -2, 9},
	}}

	out := sanitizeQuestions(in, nil)

	// -2 clamps to 0 (already seen), 9 clamps to the last option.
	require.Len(t, out, 1)
	assert.Equal(t, []int{1, 0, 2}, out[0].CorrectIndices)
}

func TestSanitizeQuestions_MCQOutOfRangeIndexClampedNotDropped(t *testing.T) {
	in := []model.Question{{
		Kind:           model.KindMCQ,
		Text:           "Which protocol carries web traffic?",
		Options:        []string{"HTTP", "TCP", "UDP"},
		CorrectIndices: []int{10},
	}}

	out := sanitizeQuestions(in, testChunks())

	require.Len(t, out, 1)
	assert.Equal(t, []int{2}, out[0].CorrectIndices)
}

func TestSanitizeQuestions_ClozeClampsAnswersToGaps(t *testing.T) {
	in := []model.Question{{
		Kind:         model.KindCloze,
		Text:         "{{gap1}} resolves names; {{gap2}} caches at the edge.",
		ClozeAnswers: []string{" DNS ", "CDN", "extra"},
	}}

	out := sanitizeQuestions(in, nil)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"DNS", "CDN"}, out[0].ClozeAnswers)
}

func TestSanitizeQuestions_ShortFoldsCaseAndWhitespace(t *testing.T) {
	in := []model.Question{{
		Kind:              model.KindShort,
		Text:              "Name the stateless protocol.",
		AcceptableAnswers: []string{"HTTP", "http", "  HTTP  ", "hyper text"},
	}}

	out := sanitizeQuestions(in, nil)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"HTTP", "hyper text"}, out[0].AcceptableAnswers)
}

func TestSanitizeQuestions_MatchTruncatesToShorterSide(t *testing.T) {
	in := []model.Question{{
		Kind:       model.KindMatch,
		Text:       "Pair each term with its category.",
		MatchLeft:  []string{"Protocol", "Database", "Queue"},
		MatchRight: []string{"HTTP", "MongoDB"},
	}}

	out := sanitizeQuestions(in, nil)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"Protocol", "Database"}, out[0].MatchLeft)
	assert.Equal(t, []string{"HTTP", "MongoDB"}, out[0].MatchRight)
}

func TestSanitizeQuestions_DropsUnrepairable(t *testing.T) {
	in := []model.Question{
		{Kind: model.KindMCQ, Text: "short", Options: []string{"a", "b"}, CorrectIndices: []int{0}},
		{Kind: model.KindTF, Text: "Missing its answer boolean entirely."},
		{Kind: model.KindOrder, Text: "Too few items to order.", OrderItems: []string{"one", "two"}},
		{Kind: model.KindTF, Text: "TCP delivers segments in order.", CorrectBool: boolPtr(true)},
	}

	out := sanitizeQuestions(in, nil)

	require.Len(t, out, 1)
	assert.Equal(t, model.KindTF, out[0].Kind)
}

func TestSanitizeQuestions_StampsMissingSourcesRoundRobin(t *testing.T) {
	in := []model.Question{
		{Kind: model.KindTF, Text: "Statement number one here.", CorrectBool: boolPtr(true)},
		{Kind: model.KindTF, Text: "Statement number two here.", CorrectBool: boolPtr(false)},
		{Kind: model.KindTF, Text: "Statement number three here.", CorrectBool: boolPtr(true),
			Source: &model.QuestionSource{ChunkID: "keep", FileID: "keep"}},
	}

	out := sanitizeQuestions(in, testChunks())

	require.Len(t, out, 3)
	assert.Equal(t, "c1", out[0].Source.ChunkID)
	assert.Equal(t, "c2", out[1].Source.ChunkID)
	assert.Equal(t, "keep", out[2].Source.ChunkID)
}
