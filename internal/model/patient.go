package model

import (
	"github.com/google/uuid"
)

type Patient struct {
	Base
	Code        string     `db:"code" json:"code"`
	UserID      *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name        string     `db:"name" json:"name"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	DateOfBirth *string    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
}

type CreatePatientRequest struct {
	UserID      *uuid.UUID `json:"user_id"`
	Name        string     `json:"name" binding:"required"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Phone       *string    `json:"phone"`
	DateOfBirth *string    `json:"date_of_birth"`
	Gender      *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	Address     *string    `json:"address"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender" binding:"omitempty,oneof=male female other"`
	Address     *string `json:"address"`
}

type PatientFilters struct {
	ID         *uuid.UUID `form:"-"`
	SearchTerm string     `form:"q"`
	Pagination
}
