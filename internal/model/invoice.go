package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	Base
	Charge
	Number        string     `db:"number" json:"number"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	Description   string     `db:"description" json:"description,omitempty"`
}

type CreateInvoiceRequest struct {
	PatientID     uuid.UUID       `json:"patient_id" binding:"required"`
	AppointmentID *uuid.UUID      `json:"appointment_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	DueDate       *time.Time      `json:"due_date"`
	Description   string          `json:"description" binding:"max=2000"`
}

type UpdateInvoiceRequest struct {
	TotalAmount *decimal.Decimal `json:"total_amount"`
	DueDate     *time.Time       `json:"due_date"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
}

type InvoiceFilters struct {
	PatientID     uuid.UUID     `form:"-"`
	PaymentStatus PaymentStatus `form:"payment_status" binding:"omitempty,payment_status"`
	Pagination
}
