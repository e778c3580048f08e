package model

import (
	"time"

	"github.com/google/uuid"
)

// TestType distinguishes per-file topic tests from the folder-wide final test.
type TestType string

const (
	TestTypeTopic TestType = "topic"
	TestTypeFinal TestType = "final"
)

// Generation strategy labels recorded on created tests.
const (
	StrategyFake = "fake-v1"
	StrategyAI   = "ai-v1"
)

// Test is a generated question set for a folder. Topic tests additionally
// reference their source document. Questions are immutable once persisted;
// a new generation pass archives and replaces, never edits.
type Test struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	FolderID  uuid.UUID  `json:"folder_id"`
	FileID    *uuid.UUID `json:"file_id,omitempty"`
	Type      TestType   `json:"type"`
	Title     string     `json:"title"`
	Archived  bool       `json:"archived"`
	Strategy  string     `json:"strategy"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"created_at"`
}

// GenerateFolderTestsRequest is the payload for folder-level test generation.
type GenerateFolderTestsRequest struct {
	TopicCount      *int               `json:"topic_count" binding:"omitempty,min=1,max=50"`
	FinalCount      *int               `json:"final_count" binding:"omitempty,min=1,max=200"`
	ArchiveExisting *bool              `json:"archive_existing"`
	Strategy        string             `json:"strategy" binding:"omitempty,oneof=fake ai"`
	Mix             map[string]float64 `json:"mix" binding:"omitempty"`
}

// UpdateTestRequest is the payload for flipping the archived flag.
type UpdateTestRequest struct {
	Archived *bool `json:"archived" binding:"required"`
}

// TestSummary is the listing view of a test (no questions).
type TestSummary struct {
	ID            uuid.UUID  `json:"id"`
	Type          TestType   `json:"type"`
	Title         string     `json:"title"`
	FileID        *uuid.UUID `json:"file_id,omitempty"`
	Archived      bool       `json:"archived"`
	Strategy      string     `json:"strategy"`
	QuestionCount int        `json:"question_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TestView is the redacted detail view served to a test taker.
type TestView struct {
	ID            uuid.UUID  `json:"id"`
	FolderID      uuid.UUID  `json:"folder_id"`
	FileID        *uuid.UUID `json:"file_id,omitempty"`
	Type          TestType   `json:"type"`
	Title         string     `json:"title"`
	Archived      bool       `json:"archived"`
	QuestionCount int        `json:"question_count"`
	Questions     []Question `json:"questions"`
	CreatedAt     time.Time  `json:"created_at"`
}
