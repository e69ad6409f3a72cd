package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// Charge holds the monetary fields shared by appointments and invoices.
// PaymentStatus is derived from the two amounts and never set by callers.
type Charge struct {
	TotalAmount   decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	PaymentStatus PaymentStatus   `db:"payment_status" json:"payment_status"`
	PaymentDate   *time.Time      `db:"payment_date" json:"payment_date,omitempty"`
}

type PaymentRequest struct {
	PaidAmount decimal.Decimal `json:"paid_amount"`
}
