package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus enumerates the parse lifecycle of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusUploaded DocumentStatus = "uploaded"
	DocumentStatusParsed   DocumentStatus = "parsed"
	DocumentStatusFailed   DocumentStatus = "failed"
)

// Document represents an uploaded source file stored in object storage.
type Document struct {
	ID           uuid.UUID      `json:"id"`
	FolderID     uuid.UUID      `json:"folder_id"`
	OwnerID      uuid.UUID      `json:"owner_id"`
	OriginalName string         `json:"original_name"`
	Bucket       string         `json:"bucket"`
	ObjectKey    string         `json:"object_key"`
	Mime         string         `json:"mime"`
	Size         int64          `json:"size"`
	Status       DocumentStatus `json:"status"`
	PageCount    int            `json:"page_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ParseDocumentRequest is the payload for (re-)parsing a document into chunks.
type ParseDocumentRequest struct {
	Size    *int `json:"size" binding:"omitempty,min=50,max=20000"`
	Overlap *int `json:"overlap" binding:"omitempty,min=0,max=10000"`
}
