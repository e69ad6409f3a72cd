package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/scope"
	"github.com/jwalitptl/clinic-api/pkg/errors"
)

const (
	codeSequence = "patient"
	codeFormat   = "PAT-%06d"
)

type Service struct {
	repo     repository.PatientRepository
	users    repository.UserRepository
	seq      repository.SequenceRepository
	resolver *scope.Resolver
	auditor  *audit.Service
}

func NewService(repo repository.PatientRepository, users repository.UserRepository, seq repository.SequenceRepository,
	resolver *scope.Resolver, auditor *audit.Service) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		seq:      seq,
		resolver: resolver,
		auditor:  auditor,
	}
}

func validateDateOfBirth(dob *string) error {
	if dob == nil || *dob == "" {
		return nil
	}
	t, err := time.Parse(model.DateLayout, *dob)
	if err != nil {
		return errors.Validation("date_of_birth must be YYYY-MM-DD")
	}
	if t.After(time.Now()) {
		return errors.Validation("date_of_birth cannot be in the future")
	}
	return nil
}

// checkLinkedUser makes sure a user linked to a patient holds the patient role.
func (s *Service) checkLinkedUser(ctx context.Context, userID *uuid.UUID) error {
	if userID == nil {
		return nil
	}
	user, err := s.users.Get(ctx, *userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.Validation("linked user does not exist")
		}
		return err
	}
	if user.RoleID != model.RolePatient {
		return errors.Validation("linked user must have the patient role")
	}
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (patient *model.Patient, err error) {
	defer func() {
		id := ""
		if patient != nil {
			id = patient.ID.String()
		}
		s.auditor.Track(ctx, model.AuditActionCreate, model.AuditResourcePatient, id, err)
	}()

	if err := validateDateOfBirth(req.DateOfBirth); err != nil {
		return nil, err
	}
	if err := s.checkLinkedUser(ctx, req.UserID); err != nil {
		return nil, err
	}

	n, err := s.seq.Next(ctx, codeSequence)
	if err != nil {
		return nil, err
	}

	patient = &model.Patient{
		Base:        model.Base{ID: uuid.New()},
		Code:        fmt.Sprintf(codeFormat, n),
		UserID:      req.UserID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address:     req.Address,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// GetPatient hides other patients' records from patient-role callers.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if !sc.OwnsPatient(id) {
		return nil, errors.NotFound("patient", nil)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (patient *model.Patient, err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionUpdate, model.AuditResourcePatient, id.String(), err)
	}()

	if err := validateDateOfBirth(req.DateOfBirth); err != nil {
		return nil, err
	}

	patient, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = req.Email
	}
	if req.Phone != nil {
		patient.Phone = req.Phone
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = req.Gender
	}
	if req.Address != nil {
		patient.Address = req.Address
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// DeletePatient fails with a referential conflict while appointments,
// invoices or records still point at the patient.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) (err error) {
	defer func() {
		s.auditor.Track(ctx, model.AuditActionDelete, model.AuditResourcePatient, id.String(), err)
	}()
	return s.repo.Delete(ctx, id)
}

// ListPatients narrows patient-role callers to their own record. A patient
// account with no linked record gets an empty page.
func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	filters.Normalize()

	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, 0, err
	}
	if sc.AsPatient() {
		if sc.PatientID == nil {
			return []*model.Patient{}, 0, nil
		}
		filters.ID = sc.PatientID
	}
	return s.repo.List(ctx, filters)
}
