package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Doctor struct {
	Base
	Code            string          `db:"code" json:"code"`
	UserID          *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	Name            string          `db:"name" json:"name"`
	Specialization  string          `db:"specialization" json:"specialization"`
	Email           *string         `db:"email" json:"email,omitempty"`
	Phone           *string         `db:"phone" json:"phone,omitempty"`
	ConsultationFee decimal.Decimal `db:"consultation_fee" json:"consultation_fee"`
}

type CreateDoctorRequest struct {
	UserID          *uuid.UUID      `json:"user_id"`
	Name            string          `json:"name" binding:"required"`
	Specialization  string          `json:"specialization" binding:"required"`
	Email           *string         `json:"email" binding:"omitempty,email"`
	Phone           *string         `json:"phone"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
}

type UpdateDoctorRequest struct {
	Name            *string          `json:"name"`
	Specialization  *string          `json:"specialization"`
	Email           *string          `json:"email" binding:"omitempty,email"`
	Phone           *string          `json:"phone"`
	ConsultationFee *decimal.Decimal `json:"consultation_fee"`
}

type DoctorFilters struct {
	Specialization string `form:"specialization"`
	SearchTerm     string `form:"q"`
	Pagination
}
