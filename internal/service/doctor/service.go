package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/scope"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	codeSequence = "doctor"
	codeFormat   = "DOC-%06d"
)

type Service struct {
	repo     repository.DoctorRepository
	users    repository.UserRepository
	seq      repository.SequenceRepository
	resolver *scope.Resolver
	auditor  *audit.Service
}

func NewService(repo repository.DoctorRepository, users repository.UserRepository, seq repository.SequenceRepository,
	resolver *scope.Resolver, auditor *audit.Service) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		seq:      seq,
		resolver: resolver,
		auditor:  auditor,
	}
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (doctor *model.Doctor, err error) {
	defer func() {
		id := ""
		if doctor != nil {
			id = doctor.ID.String()
		}
		s.auditor.Track(ctx, model.AuditActionCreate, model.AuditResourceDoctor, id, err)
	}()

	if req.ConsultationFee.IsNegative() {
		return nil, errors.Validation("consultation_fee must not be negative")
	}
	if req.UserID != nil {
		user, err := s.users.Get(ctx, *req.UserID)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.Validation("linked user does not exist")
			}
			return nil, err
		}
		if user.RoleID != model.RoleDoctor {
			return nil, errors.Validation("linked user must have the doctor role")
		}
	}

	n, err := s.seq.Next(ctx, codeSequence)
	if err != nil {
		return nil, err
	}

	doctor = &model.Doctor{
		Base:            model.Base{ID: uuid.New()},
		Code:            fmt.Sprintf(codeFormat, n),
		UserID:          req.UserID,
		Name:            req.Name,
		Specialization:  req.Specialization,
		Email:           req.Email,
		Phone:           req.Phone,
		ConsultationFee: req.ConsultationFee,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.repo.Get(ctx, id)
}

// UpdateDoctor lets doctor-role callers edit only their own profile.
func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (doctor *model.Doctor, err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionUpdate, model.AuditResourceDoctor, id.String(), err)
	}()

	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if !sc.OwnsDoctor(id) {
		return nil, errors.Forbidden("doctors can only update their own profile")
	}

	doctor, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.Email != nil {
		doctor.Email = req.Email
	}
	if req.Phone != nil {
		doctor.Phone = req.Phone
	}
	if req.ConsultationFee != nil {
		if req.ConsultationFee.IsNegative() {
			return nil, errors.Validation("consultation_fee must not be negative")
		}
		doctor.ConsultationFee = *req.ConsultationFee
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, err
	}
	return doctor, nil
}

// DeleteDoctor fails with a referential conflict while appointments still
// point at the doctor.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionDelete, model.AuditResourceDoctor, id.String(), err)
	}()
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int64, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}
