package appointment

import (
	"context"
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

type Service struct {
	repo     repository.AppointmentRepository
	doctors  repository.DoctorRepository
	resolver *scope.Resolver
	auditor  *audit.Service
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(repo repository.AppointmentRepository, doctors repository.DoctorRepository, resolver *scope.Resolver,
	auditor *audit.Service, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		resolver: resolver,
		auditor:  auditor,
		metrics:  m,
		now:      time.Now,
	}
}

func validateDate(date string) error {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return errors.Validation("date must be YYYY-MM-DD")
	}
	return nil
}

func validateTime(clock string) error {
	if _, err := time.Parse(model.TimeLayout, clock); err != nil {
		return errors.Validation("time must be HH:MM")
	}
	return nil
}

// owns reports whether a scoped caller may see or touch apt.
func owns(sc scope.Scope, apt *model.Appointment) bool {
	return sc.OwnsPatient(apt.PatientID) && sc.OwnsDoctor(apt.DoctorID)
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (apt *model.Appointment, err error) {
	defer func() {
		id := ""
		if apt != nil {
			id = apt.ID.String()
		}
		s.auditor.Track(ctx, model.AuditActionCreate, model.AuditResourceAppointment, id, err)
	}()

	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if err := validateTime(req.Time); err != nil {
		return nil, err
	}

	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if sc.AsPatient() && !sc.OwnsPatient(req.PatientID) {
		return nil, errors.Forbidden("patients can only book their own appointments")
	}
	if sc.AsDoctor() && !sc.OwnsDoctor(req.DoctorID) {
		return nil, errors.Forbidden("doctors can only book their own appointments")
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.Validation("doctor does not exist")
		}
		return nil, err
	}

	total := req.TotalAmount
	if total.IsZero() {
		total = doctor.ConsultationFee
	}
	charge, err := billing.NewCharge(total)
	if err != nil {
		return nil, err
	}

	apt = &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		Charge:    charge,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Status:    model.AppointmentStatusPending,
		Notes:     req.Notes,
	}

	ev, err := event.New(model.EventAppointmentCreated, event.AppointmentCreated{
		AppointmentID: apt.ID,
		PatientID:     apt.PatientID,
		DoctorID:      apt.DoctorID,
		Date:          apt.Date,
		Time:          apt.Time,
	})
	if err != nil {
		return nil, errors.Internal(err)
	}

	if err := s.repo.Create(ctx, apt, ev); err != nil {
		return nil, err
	}
	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owns(sc, apt) {
		return nil, errors.NotFound("appointment", nil)
	}
	return apt, nil
}

// paidEvent builds appointment.paid when a change moved apt into paid.
func paidEvent(apt *model.Appointment, becamePaid bool) (*model.OutboxEvent, error) {
	if !becamePaid {
		return nil, nil
	}
	return event.Payment(model.EventAppointmentPaid, model.AuditResourceAppointment,
		apt.ID, apt.PatientID, apt.ID.String(), apt.Charge)
}

// UpdateAppointment edits schedule, status, notes and total. Paid
// appointments are locked to privileged callers.
func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (apt *model.Appointment, err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionUpdate, model.AuditResourceAppointment, id.String(), err)
	}()

	if req.Date != nil {
		if err := validateDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if req.Time != nil {
		if err := validateTime(*req.Time); err != nil {
			return nil, err
		}
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, errors.Validation("unknown appointment status %q", *req.Status)
	}

	p := ability.FromContext(ctx)
	sc, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	return s.repo.Update(ctx, id, func(apt *model.Appointment) (*model.OutboxEvent, error) {
		if !owns(sc, apt) {
			return nil, errors.NotFound("appointment", nil)
		}
		if err := billing.CanEditCharge(p, apt.Charge); err != nil {
			return nil, err
		}

		if req.Date != nil {
			apt.Date = *req.Date
		}
		if req.Time != nil {
			apt.Time = *req.Time
		}
		if req.Status != nil {
			apt.Status = *req.Status
		}
		if req.Notes != nil {
			apt.Notes = *req.Notes
		}

		becamePaid := false
		if req.TotalAmount != nil {
			var err error
			if becamePaid, err = billing.SetTotal(&apt.Charge, *req.TotalAmount, s.now()); err != nil {
				return nil, err
			}
		}
		return paidEvent(apt, becamePaid)
	})
}

// UpdatePayment sets the cumulative amount paid and rederives the status.
func (s *Service) UpdatePayment(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (apt *model.Appointment, err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionPayment, model.AuditResourceAppointment, id.String(), err)
	}()

	p := ability.FromContext(ctx)
	sc, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	apt, err = s.repo.Update(ctx, id, func(apt *model.Appointment) (*model.OutboxEvent, error) {
		if !owns(sc, apt) {
			return nil, errors.NotFound("appointment", nil)
		}
		if err := billing.CanEditCharge(p, apt.Charge); err != nil {
			return nil, err
		}
		becamePaid, err := billing.ApplyPayment(&apt.Charge, req.PaidAmount, s.now())
		if err != nil {
			return nil, err
		}
		return paidEvent(apt, becamePaid)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PaymentApplied(model.AuditResourceAppointment, string(apt.PaymentStatus))
	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionDelete, model.AuditResourceAppointment, id.String(), err)
	}()

	p := ability.FromContext(ctx)
	sc, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, id, func(apt *model.Appointment) error {
		if !owns(sc, apt) {
			return errors.NotFound("appointment", nil)
		}
		return billing.CanDeleteAppointment(p, apt)
	})
}

// ListAppointments shows doctors and patients only their own appointments.
func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	filters.Normalize()
	if filters.Date != "" {
		if err := validateDate(filters.Date); err != nil {
			return nil, 0, err
		}
	}

	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, 0, err
	}
	if sc.Empty() {
		return []*model.Appointment{}, 0, nil
	}
	if sc.AsPatient() {
		filters.PatientID = *sc.PatientID
	}
	if sc.AsDoctor() {
		filters.DoctorID = *sc.DoctorID
	}
	return s.repo.List(ctx, filters)
}
