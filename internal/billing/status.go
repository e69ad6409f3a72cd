// Package billing derives payment status for appointments and invoices and
// decides who may edit or delete them.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// DeriveStatus maps amounts to a payment status. A zero total is never paid,
// and over-payment still counts as paid.
func DeriveStatus(paid, total decimal.Decimal) model.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total) && total.IsPositive():
		return model.PaymentStatusPaid
	case paid.IsPositive():
		return model.PaymentStatusPartial
	default:
		return model.PaymentStatusUnpaid
	}
}

// Recompute refreshes c.PaymentStatus from its amounts and stamps the
// payment date the first time the record is paid. An existing date is never
// replaced. It reports whether this call moved the record into paid.
func Recompute(c *model.Charge, now time.Time) bool {
	previous := c.PaymentStatus
	c.PaymentStatus = DeriveStatus(c.PaidAmount, c.TotalAmount)

	if c.PaymentStatus != model.PaymentStatusPaid {
		return false
	}
	if c.PaymentDate == nil {
		d := PaymentDay(now)
		c.PaymentDate = &d
	}
	return previous != model.PaymentStatusPaid
}

// PaymentDay truncates now to the calendar day in UTC.
func PaymentDay(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewCharge starts a record with nothing paid.
func NewCharge(total decimal.Decimal) (model.Charge, error) {
	if total.IsNegative() {
		return model.Charge{}, errors.Validation("total amount must not be negative")
	}
	c := model.Charge{TotalAmount: total, PaidAmount: decimal.Zero}
	c.PaymentStatus = DeriveStatus(c.PaidAmount, c.TotalAmount)
	return c, nil
}

// SetTotal changes the billed amount and recomputes the status.
func SetTotal(c *model.Charge, total decimal.Decimal, now time.Time) (bool, error) {
	if total.IsNegative() {
		return false, errors.Validation("total amount must not be negative")
	}
	c.TotalAmount = total
	return Recompute(c, now), nil
}

// ApplyPayment records the cumulative amount paid so far.
func ApplyPayment(c *model.Charge, paid decimal.Decimal, now time.Time) (bool, error) {
	if paid.IsNegative() {
		return false, errors.Validation("paid amount must not be negative")
	}
	c.PaidAmount = paid
	return Recompute(c, now), nil
}
