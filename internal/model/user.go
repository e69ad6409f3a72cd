package model

import (
	"time"

	"github.com/google/uuid"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a system user
type User struct {
	Base
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	RoleID       RoleID     `json:"role_id" db:"role_id"`
	Status       string     `json:"status" db:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// IsAdmin reports whether the user's role administers other users.
func (u *User) IsAdmin() bool {
	return u.RoleID == RoleSuperuser || u.RoleID == RoleAdmin
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Name     string  `json:"name" binding:"required"`
	Password string  `json:"password" binding:"required,min=8"`
	Phone    *string `json:"phone"`
	RoleID   RoleID  `json:"role_id" binding:"role_id"`
}

// UpdateUserRequest represents user update parameters
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	Password *string `json:"password" binding:"omitempty,min=8"`
	Status   *string `json:"status" binding:"omitempty,oneof=active inactive"`
	RoleID   *RoleID `json:"role_id" binding:"omitempty,role_id"`
}

type UserFilters struct {
	RoleID     *RoleID `form:"role_id"`
	Status     string  `form:"status"`
	SearchTerm string  `form:"q"`
	Pagination
}

// UserLink is the patient and doctor rows a user is linked to, if any.
type UserLink struct {
	UserID    uuid.UUID  `db:"user_id"`
	PatientID *uuid.UUID `db:"patient_id"`
	DoctorID  *uuid.UUID `db:"doctor_id"`
}
