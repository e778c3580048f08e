package generator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyvault/studyvault-backend/internal/model"
)

func newTestFactory() *FakeFactory {
	return NewFakeFactory(rand.New(rand.NewSource(42)))
}

func TestFakeFactory_EveryKindValidates(t *testing.T) {
	f := newTestFactory()
	texts := []string{
		"HTTP is a stateless protocol used between clients and servers.",
		"Kafka brokers replicate partitions across the cluster for durability.",
		"", // no subject token available at all
		"zz qq xx", // no long word, no lexicon hit
	}
	for _, kind := range model.AllQuestionKinds {
		for i, text := range texts {
			q := f.MakeQuestion(ChunkInput{ChunkID: "c1", FileID: "f1", Text: text}, i, kind)
			require.NoErrorf(t, q.Validate(), "kind=%s text=%q", kind, text)
			assert.Equal(t, kind, q.Kind)
			require.NotNil(t, q.Source)
			assert.Equal(t, "c1", q.Source.ChunkID)
			assert.Equal(t, "f1", q.Source.FileID)
		}
	}
}

func TestFakeFactory_MCQCorrectIndexPointsAtSubject(t *testing.T) {
	f := newTestFactory()
	q := f.MakeQuestion(ChunkInput{Text: "Redis keeps its working set in memory."}, 0, model.KindMCQ)

	require.Len(t, q.CorrectIndices, 1)
	assert.Equal(t, "Redis", q.Options[q.CorrectIndices[0]])
}

func TestFakeFactory_MSQCorrectOptionsAreRelated(t *testing.T) {
	f := newTestFactory()
	q := f.MakeQuestion(ChunkInput{Text: "TCP guarantees ordered delivery."}, 0, model.KindMSQ)

	require.NotEmpty(t, q.CorrectIndices)
	correct := make([]string, 0, len(q.CorrectIndices))
	for _, i := range q.CorrectIndices {
		correct = append(correct, q.Options[i])
	}
	assert.Contains(t, correct, "TCP")
	for _, c := range correct {
		if c == "TCP" {
			continue
		}
		assert.Contains(t, related["TCP"], c)
	}
}

func TestFakeFactory_ClozeGapsTheSubject(t *testing.T) {
	f := newTestFactory()
	q := f.MakeQuestion(ChunkInput{Text: "DNS resolves names to addresses."}, 0, model.KindCloze)

	assert.True(t, model.GapMarker.MatchString(q.Text))
	assert.NotContains(t, q.Text, "DNS")
	assert.Equal(t, []string{"DNS"}, q.ClozeAnswers)
}

func TestFakeFactory_ClozeFallsBackWhenGapWouldBeTruncated(t *testing.T) {
	f := newTestFactory()
	long := make([]byte, 0, 400)
	for len(long) < 300 {
		long = append(long, "lorem ipsum "...)
	}
	text := string(long) + "JWT appears only past the prompt budget."

	q := f.MakeQuestion(ChunkInput{Text: text}, 0, model.KindCloze)

	require.NoError(t, q.Validate())
	assert.True(t, model.GapMarker.MatchString(q.Text))
}

func TestFakeFactory_TFStatementIsTrue(t *testing.T) {
	f := newTestFactory()
	q := f.MakeQuestion(ChunkInput{Text: "GraphQL exposes a typed schema."}, 3, model.KindTF)

	require.NotNil(t, q.CorrectBool)
	assert.True(t, *q.CorrectBool)
	assert.Contains(t, q.Text, "GraphQL")
}

func TestFakeFactory_RandomKindWhenUnset(t *testing.T) {
	f := newTestFactory()
	seen := map[model.QuestionKind]bool{}
	for i := 0; i < 200; i++ {
		q := f.MakeQuestion(ChunkInput{Text: "OAuth2 delegates authorization."}, i, "")
		require.NoError(t, q.Validate())
		seen[q.Kind] = true
	}
	assert.Len(t, seen, len(model.AllQuestionKinds))
}

func TestFakeFactory_MakeBatchStampsEveryChunk(t *testing.T) {
	f := newTestFactory()
	chunks := []ChunkInput{
		{ChunkID: "a", FileID: "f1", Text: "TLS encrypts the transport."},
		{ChunkID: "b", FileID: "f2", Text: "CDN caches at the edge."},
	}
	qs := f.MakeBatch(chunks, model.KindShort)

	require.Len(t, qs, 2)
	assert.Equal(t, "a", qs[0].Source.ChunkID)
	assert.Equal(t, "f2", qs[1].Source.FileID)
	for _, q := range qs {
		assert.Equal(t, model.KindShort, q.Kind)
	}
}
