package chunker

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyvault/studyvault-backend/internal/extract"
)

func pagesOf(texts ...string) []extract.PageText {
	pages := make([]extract.PageText, len(texts))
	for i, t := range texts {
		pages[i] = extract.PageText{Page: i + 1, Text: t}
	}
	return pages
}

func TestSplit_RejectsNonPositiveStep(t *testing.T) {
	id := uuid.New()

	_, err := Split(id, pagesOf("some text"), 100, 100)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = Split(id, pagesOf("some text"), 100, 150)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = Split(id, pagesOf("some text"), 0, 0)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestSplit_EmptyInputYieldsNoChunks(t *testing.T) {
	chunks, err := Split(uuid.New(), nil, 1000, 150)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = Split(uuid.New(), pagesOf("", ""), 1000, 150)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_SingleChunkWhenTextFits(t *testing.T) {
	id := uuid.New()
	chunks, err := Split(id, pagesOf("Short text."), 1000, 150)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.Equal(t, id, c.DocumentID)
	assert.Equal(t, 0, c.Index)
	assert.Equal(t, "Short text.", c.Text)
	assert.Equal(t, 0, c.StartOffset)
	assert.Equal(t, 11, c.EndOffset)
	assert.Equal(t, 1, c.PageFrom)
	assert.Equal(t, 1, c.PageTo)
}

func TestSplit_IndicesAreContiguous(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)
	chunks, err := Split(uuid.New(), pagesOf(text), 200, 40)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
}

// Concatenating chunk texts in index order and removing the overlap regions
// must reconstruct the original page-concatenated text.
func TestSplit_RoundTripReconstruction(t *testing.T) {
	page1 := strings.Repeat("Networks move packets. Routers forward them. ", 20)
	page2 := strings.Repeat("Protocols define message formats and rules. ", 20)
	full := page1 + page2

	for _, tc := range []struct{ size, overlap int }{
		{200, 60},
		{150, 30},
		{1000, 150},
	} {
		chunks, err := Split(uuid.New(), pagesOf(page1, page2), tc.size, tc.overlap)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		var sb strings.Builder
		prevEnd := 0
		for i, c := range chunks {
			require.Equal(t, i, c.Index)
			require.LessOrEqual(t, c.StartOffset, prevEnd, "gap between chunks %d and %d", i-1, i)
			runes := []rune(c.Text)
			sb.WriteString(string(runes[prevEnd-c.StartOffset:]))
			prevEnd = c.EndOffset
		}
		assert.Equal(t, full, sb.String(), "size=%d overlap=%d", tc.size, tc.overlap)
	}
}

func TestSplit_BoundariesAvoidWordInterior(t *testing.T) {
	pages := pagesOf("HTTP is a protocol.", "TCP is reliable.")
	full := "HTTP is a protocol.TCP is reliable."

	chunks, err := Split(uuid.New(), pages, 15, 5)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	// Union of chunk spans must cover both sentences.
	covered := make([]bool, len([]rune(full)))
	for _, c := range chunks {
		for i := c.StartOffset; i < c.EndOffset; i++ {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		assert.True(t, ok, "offset %d not covered", i)
	}

	// No boundary strictly inside "protocol" or "reliable".
	words := [][2]int{
		{strings.Index(full, "protocol"), strings.Index(full, "protocol") + len("protocol")},
		{strings.Index(full, "reliable"), strings.Index(full, "reliable") + len("reliable")},
	}
	for _, c := range chunks {
		for _, w := range words {
			assert.False(t, c.StartOffset > w[0] && c.StartOffset < w[1],
				"chunk %d starts inside word at %d", c.Index, c.StartOffset)
			assert.False(t, c.EndOffset > w[0] && c.EndOffset < w[1],
				"chunk %d ends inside word at %d", c.Index, c.EndOffset)
		}
	}
}

func TestSplit_PageRangeAttribution(t *testing.T) {
	page1 := strings.Repeat("alpha beta gamma delta. ", 10) // 240 runes
	page2 := strings.Repeat("epsilon zeta eta theta. ", 10)
	chunks, err := Split(uuid.New(), pagesOf(page1, page2), 200, 50)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	first := chunks[0]
	assert.Equal(t, 1, first.PageFrom)
	assert.Equal(t, 1, first.PageTo)

	last := chunks[len(chunks)-1]
	assert.Equal(t, 2, last.PageTo)

	for _, c := range chunks {
		assert.LessOrEqual(t, c.PageFrom, c.PageTo)
		assert.GreaterOrEqual(t, c.PageFrom, 1)
	}
}

// Splitting the same input twice yields an identical chunk set.
func TestSplit_Deterministic(t *testing.T) {
	id := uuid.New()
	pages := pagesOf(strings.Repeat("Repeatable content with sentences. ", 30))

	a, err := Split(id, pages, 180, 30)
	require.NoError(t, err)
	b, err := Split(id, pages, 180, 30)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
