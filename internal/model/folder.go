package model

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups uploaded documents and the tests generated from them.
type Folder struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateFolderRequest is the payload for creating a folder.
type CreateFolderRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=120"`
	Color string `json:"color" binding:"omitempty,max=20"`
	Icon  string `json:"icon" binding:"omitempty,max=20"`
}

// RenameFolderRequest is the payload for renaming a folder.
type RenameFolderRequest struct {
	Name string `json:"name" binding:"required,min=1,max=120"`
}
