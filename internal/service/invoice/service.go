package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/billing"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/event"
	"github.com/jwalitptl/clinic-api/internal/service/scope"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

const (
	numberSequence = "invoice"
	numberFormat   = "INV-%06d"
)

type Service struct {
	repo         repository.InvoiceRepository
	appointments repository.AppointmentRepository
	seq          repository.SequenceRepository
	resolver     *scope.Resolver
	auditor      *audit.Service
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(repo repository.InvoiceRepository, appointments repository.AppointmentRepository, seq repository.SequenceRepository,
	resolver *scope.Resolver, auditor *audit.Service, m *metrics.Metrics) *Service {
	return &Service{
		repo:         repo,
		appointments: appointments,
		seq:          seq,
		resolver:     resolver,
		auditor:      auditor,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *Service) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (inv *model.Invoice, err error) {
	defer func() {
		id := ""
		if inv != nil {
			id = inv.ID.String()
		}
		s.auditor.Track(ctx, model.AuditActionCreate, model.AuditResourceInvoice, id, err)
	}()

	charge, err := billing.NewCharge(req.TotalAmount)
	if err != nil {
		return nil, err
	}

	if req.AppointmentID != nil {
		apt, err := s.appointments.Get(ctx, *req.AppointmentID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.Validation("appointment does not exist")
			}
			return nil, err
		}
		if apt.PatientID != req.PatientID {
			return nil, errors.Validation("appointment belongs to a different patient")
		}
	}

	n, err := s.seq.Next(ctx, numberSequence)
	if err != nil {
		return nil, err
	}

	inv = &model.Invoice{
		Base:          model.Base{ID: uuid.New()},
		Charge:        charge,
		Number:        fmt.Sprintf(numberFormat, n),
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		DueDate:       req.DueDate,
		Description:   req.Description,
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *Service) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sc.OwnsPatient(inv.PatientID) {
		return nil, errors.NotFound("invoice", nil)
	}
	return inv, nil
}

func paidEvent(inv *model.Invoice, becamePaid bool) (*model.OutboxEvent, error) {
	if !becamePaid {
		return nil, nil
	}
	return event.Payment(model.EventInvoicePaid, model.AuditResourceInvoice,
		inv.ID, inv.PatientID, inv.Number, inv.Charge)
}

// UpdateInvoice edits the total, due date and description. Paid invoices
// are locked to privileged callers.
func (s *Service) UpdateInvoice(ctx context.Context, id uuid.UUID, req *model.UpdateInvoiceRequest) (inv *model.Invoice, err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionUpdate, model.AuditResourceInvoice, id.String(), err)
	}()

	p := ability.FromContext(ctx)
	return s.repo.Update(ctx, id, func(inv *model.Invoice) (*model.OutboxEvent, error) {
		if err := billing.CanEditCharge(p, inv.Charge); err != nil {
			return nil, err
		}
		if req.DueDate != nil {
			inv.DueDate = req.DueDate
		}
		if req.Description != nil {
			inv.Description = *req.Description
		}

		becamePaid := false
		if req.TotalAmount != nil {
			var err error
			if becamePaid, err = billing.SetTotal(&inv.Charge, *req.TotalAmount, s.now()); err != nil {
				return nil, err
			}
		}
		return paidEvent(inv, becamePaid)
	})
}

// UpdatePayment sets the cumulative amount paid and rederives the status.
func (s *Service) UpdatePayment(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (inv *model.Invoice, err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionPayment, model.AuditResourceInvoice, id.String(), err)
	}()

	p := ability.FromContext(ctx)
	inv, err = s.repo.Update(ctx, id, func(inv *model.Invoice) (*model.OutboxEvent, error) {
		if err := billing.CanEditCharge(p, inv.Charge); err != nil {
			return nil, err
		}
		becamePaid, err := billing.ApplyPayment(&inv.Charge, req.PaidAmount, s.now())
		if err != nil {
			return nil, err
		}
		return paidEvent(inv, becamePaid)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentApplied(model.AuditResourceInvoice, string(inv.PaymentStatus))
	return inv, nil
}

func (s *Service) DeleteInvoice(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionDelete, model.AuditResourceInvoice, id.String(), err)
	}()

	if err := billing.CanDeleteInvoice(ability.FromContext(ctx)); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ListInvoices narrows patient-role callers to their own invoices.
func (s *Service) ListInvoices(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, int64, error) {
	filters.Normalize()

	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, 0, err
	}
	if sc.AsPatient() {
		if sc.PatientID == nil {
			return []*model.Invoice{}, 0, nil
		}
		filters.PatientID = *sc.PatientID
	}
	return s.repo.List(ctx, filters)
}
