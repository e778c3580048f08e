package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is a contiguous slice of a document's extracted text, sized for
// question-generation input. Chunks for a document are fully regenerated
// on every re-parse; Index values are contiguous starting at 0.
type Chunk struct {
	ID          uuid.UUID `json:"id"`
	DocumentID  uuid.UUID `json:"document_id"`
	Index       int       `json:"index"`
	Text        string    `json:"text"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	PageFrom    int       `json:"page_from"`
	PageTo      int       `json:"page_to"`
	CreatedAt   time.Time `json:"created_at"`
}
