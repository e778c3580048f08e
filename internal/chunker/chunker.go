// Package chunker splits per-page extracted text into overlapping,
// boundary-aware chunks with page-range attribution. It is pure: no I/O,
// no persistence.
package chunker

import (
	"errors"
	"unicode"

	"github.com/google/uuid"
	"github.com/studyvault/studyvault-backend/internal/extract"
	"github.com/studyvault/studyvault-backend/internal/model"
)

// Defaults for a parse request that does not specify size/overlap.
const (
	DefaultSize    = 1000
	DefaultOverlap = 150
)

// Snap limits: how far a chunk boundary may move to avoid cutting a word.
const (
	maxBackwardShift = 60
	maxForwardShift  = 120
)

// ErrInvalidStep is returned when overlap >= size (the window would not
// advance) or size is not positive.
var ErrInvalidStep = errors.New("chunker: overlap must be smaller than size")

// Split concatenates the page texts and slides a window of `size` runes with
// step `size-overlap` over the buffer. Window boundaries are snapped to the
// nearest space or sentence-ending punctuation so chunks do not start or end
// mid-word. Offsets are rune offsets into the concatenated buffer; page
// ranges are inclusive.
func Split(documentID uuid.UUID, pages []extract.PageText, size, overlap int) ([]model.Chunk, error) {
	step := size - overlap
	if size <= 0 || step <= 0 {
		return nil, ErrInvalidStep
	}

	pageStarts := make([]int, 0, len(pages))
	var all []rune
	for _, p := range pages {
		pageStarts = append(pageStarts, len(all))
		all = append(all, []rune(p.Text)...)
	}

	var chunks []model.Chunk
	for target := 0; target < len(all); target += step {
		start := target
		if start > 0 && isWordChar(all[start]) && isWordChar(all[start-1]) {
			start = snapBackward(all, start)
		}

		end := min(start+size, len(all))
		if end < len(all) && isWordChar(all[end-1]) && isWordChar(all[end]) {
			end = snapForward(all, end)
		}

		pageFrom, pageTo := pageRange(pageStarts, len(all), start, end)
		chunks = append(chunks, model.Chunk{
			DocumentID:  documentID,
			Index:       len(chunks),
			Text:        string(all[start:end]),
			StartOffset: start,
			EndOffset:   end,
			PageFrom:    pageFrom,
			PageTo:      pageTo,
		})

		if end == len(all) {
			break
		}
	}
	return chunks, nil
}

// snapBackward walks back from pos to just after the nearest space or
// sentence end, bounded by maxBackwardShift. Returns pos unchanged when
// nothing suitable is found.
func snapBackward(all []rune, pos int) int {
	for i := pos; i >= max(0, pos-maxBackwardShift); i-- {
		if all[i] == ' ' || isSentenceEnd(all[i]) {
			return i + 1
		}
	}
	return pos
}

// snapForward walks forward from pos, preferring a sentence end over a
// plain space, bounded by maxForwardShift either way.
func snapForward(all []rune, pos int) int {
	limit := min(len(all)-1, pos+maxForwardShift)
	for i := pos; i <= limit; i++ {
		if isSentenceEnd(all[i]) {
			return i + 1
		}
	}
	for i := pos; i <= limit; i++ {
		if all[i] == ' ' {
			return i + 1
		}
	}
	return pos
}

// pageRange maps a [start,end) span to the inclusive 1-based page interval
// it touches.
func pageRange(pageStarts []int, totalLen, start, end int) (int, int) {
	pageFrom, pageTo := 0, 0
	for i := range pageStarts {
		pageEnd := totalLen
		if i+1 < len(pageStarts) {
			pageEnd = pageStarts[i+1]
		}
		if pageFrom == 0 && start < pageEnd {
			pageFrom = i + 1
		}
		if end <= pageEnd {
			pageTo = i + 1
			break
		}
	}
	return pageFrom, pageTo
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
