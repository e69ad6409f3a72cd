package medical

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	"github.com/jwalitptl/clinic-api/internal/service/scope"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

// Service stores clinical notes for a patient. Diagnosis, treatment and
// notes are sealed at rest when a cipher is configured.
type Service struct {
	repo     repository.MedicalRecordRepository
	patients repository.PatientRepository
	resolver *scope.Resolver
	cipher   *security.FieldCipher
	auditor  *audit.Service
}

func NewService(repo repository.MedicalRecordRepository, patients repository.PatientRepository, resolver *scope.Resolver,
	cipher *security.FieldCipher, auditor *audit.Service) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		resolver: resolver,
		cipher:   cipher,
		auditor:  auditor,
	}
}

// visiblePatient loads the patient and hides it from callers scoped elsewhere.
func (s *Service) visiblePatient(ctx context.Context, sc scope.Scope, patientID uuid.UUID) error {
	if !sc.OwnsPatient(patientID) {
		return errors.NotFound("patient", nil)
	}
	_, err := s.patients.Get(ctx, patientID)
	return err
}

func (s *Service) CreateMedicalRecord(ctx context.Context, patientID uuid.UUID, req *model.CreateMedicalRecordRequest) (rec *model.MedicalRecord, err error) {
	defer func() {
		id := ""
		if rec != nil {
			id = rec.ID.String()
		}
		s.auditor.Track(ctx, model.AuditActionCreate, model.AuditResourceMedicalRecord, id, err)
	}()

	p := ability.FromContext(ctx)
	sc, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.visiblePatient(ctx, sc, patientID); err != nil {
		return nil, err
	}

	doctorID := req.DoctorID
	if sc.AsDoctor() {
		if sc.DoctorID == nil {
			return nil, errors.Forbidden("doctor profile is not linked to this account")
		}
		doctorID = sc.DoctorID
	}

	meds := req.Medications
	if meds == nil {
		meds = []model.Medication{}
	}
	prescription, err := json.Marshal(meds)
	if err != nil {
		return nil, errors.Internal(err)
	}

	rec = &model.MedicalRecord{
		Base:          model.Base{ID: uuid.New()},
		PatientID:     patientID,
		DoctorID:      doctorID,
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Treatment:     req.Treatment,
		Prescription:  prescription,
		Notes:         req.Notes,
		CreatedBy:     p.UserID,
	}

	stored := *rec
	if err := s.seal(&stored); err != nil {
		return nil, errors.Internal(err)
	}
	if err := s.repo.Create(ctx, &stored); err != nil {
		return nil, err
	}
	rec.CreatedAt, rec.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	return rec, nil
}

// ListMedicalRecords returns a patient's history, newest first.
func (s *Service) ListMedicalRecords(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	sc, err := s.resolver.Resolve(ctx, ability.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.visiblePatient(ctx, sc, patientID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := s.open(rec); err != nil {
			return nil, errors.Internal(fmt.Errorf("medical record %s: %w", rec.ID, err))
		}
	}
	return records, nil
}

func (s *Service) seal(rec *model.MedicalRecord) error {
	for _, field := range []*string{&rec.Diagnosis, &rec.Treatment, &rec.Notes} {
		sealed, err := s.cipher.Seal(*field)
		if err != nil {
			return err
		}
		*field = sealed
	}
	return nil
}

func (s *Service) open(rec *model.MedicalRecord) error {
	for _, field := range []*string{&rec.Diagnosis, &rec.Treatment, &rec.Notes} {
		plain, err := s.cipher.Open(*field)
		if err != nil {
			return err
		}
		*field = plain
	}
	return nil
}
