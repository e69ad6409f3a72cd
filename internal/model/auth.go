package model

import (
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Session is the authenticated caller as carried in the access token.
// UserID is uuid.Nil for the env super admin.
type Session struct {
	UserID  uuid.UUID `json:"user_id"`
	RoleID  RoleID    `json:"role_id"`
	IsAdmin bool      `json:"is_admin"`
	Email   string    `json:"email"`
}
