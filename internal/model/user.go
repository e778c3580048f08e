package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Role names used in JWT claims and ownership checks.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account that owns folders, documents, tests and attempts.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCtx is the authenticated caller identity handed to services.
// The core never authenticates this itself; middleware builds it from claims.
type UserCtx struct {
	UserID string
	Roles  []string
}

// IsAdmin reports whether the caller carries the admin role.
func (u UserCtx) IsAdmin() bool {
	return slices.Contains(u.Roles, RoleAdmin)
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
