package billing

import (
	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

// CanEditCharge refuses changes to a paid record unless the caller is
// privileged.
func CanEditCharge(p *ability.Principal, c model.Charge) error {
	if c.PaymentStatus != model.PaymentStatusPaid || p.Privileged() {
		return nil
	}
	return errors.Forbidden("paid records can only be changed by a super admin")
}

// CanDeleteAppointment allows a delete for privileged callers, for cancelled
// appointments, and for pending appointments with nothing paid.
func CanDeleteAppointment(p *ability.Principal, apt *model.Appointment) error {
	switch {
	case p.Privileged():
		return nil
	case apt.Status == model.AppointmentStatusCancelled:
		return nil
	case apt.Status == model.AppointmentStatusPending && apt.PaymentStatus == model.PaymentStatusUnpaid:
		return nil
	}
	return errors.Forbidden("only cancelled or unpaid pending appointments can be deleted")
}

// CanDeleteInvoice allows privileged callers only, whatever the invoice state.
func CanDeleteInvoice(p *ability.Principal) error {
	if p.Privileged() {
		return nil
	}
	return errors.Forbidden("invoices can only be deleted by a super admin")
}
