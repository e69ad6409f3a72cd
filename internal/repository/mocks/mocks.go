// Package mocks holds testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.User), args.Get(1).(int64), args.Error(2)
}

func (m *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *UserRepository) GetLinks(ctx context.Context, id uuid.UUID) (*model.UserLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserLink), args.Error(1)
}

type RoleRepository struct {
	mock.Mock
}

func (m *RoleRepository) Get(ctx context.Context, id model.RoleID) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *RoleRepository) List(ctx context.Context) ([]*model.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Role), args.Error(1)
}

func (m *RoleRepository) ListGrants(ctx context.Context, roleID model.RoleID) ([]model.RolePermission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RolePermission), args.Error(1)
}

func (m *RoleRepository) ReplaceGrants(ctx context.Context, roleID model.RoleID, grants []model.RolePermission) error {
	return m.Called(ctx, roleID, grants).Error(0)
}

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *PatientRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PatientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Patient), args.Get(1).(int64), args.Error(2)
}

type DoctorRepository struct {
	mock.Mock
}

func (m *DoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Doctor), args.Error(1)
}

func (m *DoctorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Doctor), args.Error(1)
}

func (m *DoctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *DoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *DoctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Doctor), args.Get(1).(int64), args.Error(2)
}

// AppointmentRepository runs mutations and guards against the row returned
// by the Get expectation for the same id, the way the real repository runs
// them against the locked row. Events emitted by mutations are kept in
// Events.
type AppointmentRepository struct {
	mock.Mock
	Events []*model.OutboxEvent
}

func (m *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment, event *model.OutboxEvent) error {
	err := m.Called(ctx, apt, event).Error(0)
	if err == nil && event != nil {
		m.Events = append(m.Events, event)
	}
	return err
}

func (m *AppointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, fn repository.AppointmentMutation) (*model.Appointment, error) {
	stored, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apt := *stored
	event, err := fn(&apt)
	if err != nil {
		return nil, err
	}
	if stored.PaymentDate != nil {
		apt.PaymentDate = stored.PaymentDate
	}
	if event != nil {
		m.Events = append(m.Events, event)
	}
	*stored = apt
	return &apt, nil
}

func (m *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID, guard func(*model.Appointment) error) error {
	stored, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(stored); err != nil {
			return err
		}
	}
	return m.Called(ctx, id).Error(0)
}

func (m *AppointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Appointment), args.Get(1).(int64), args.Error(2)
}

// InvoiceRepository follows AppointmentRepository.
type InvoiceRepository struct {
	mock.Mock
	Events []*model.OutboxEvent
}

func (m *InvoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *InvoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *InvoiceRepository) Update(ctx context.Context, id uuid.UUID, fn repository.InvoiceMutation) (*model.Invoice, error) {
	stored, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv := *stored
	event, err := fn(&inv)
	if err != nil {
		return nil, err
	}
	if stored.PaymentDate != nil {
		inv.PaymentDate = stored.PaymentDate
	}
	if event != nil {
		m.Events = append(m.Events, event)
	}
	*stored = inv
	return &inv, nil
}

func (m *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *InvoiceRepository) List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Invoice), args.Get(1).(int64), args.Error(2)
}

type MedicalRecordRepository struct {
	mock.Mock
}

func (m *MedicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MedicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error) {
	args := m.Called(ctx, patientID)
	return args.Get(0).([]*model.MedicalRecord), args.Error(1)
}

type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.AuditLog), args.Get(1).(int64), args.Error(2)
}

func (m *AuditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type SequenceRepository struct {
	mock.Mock
}

func (m *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit, maxRetries)
	return args.Get(0).([]*model.OutboxEvent), args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	return m.Called(ctx, id, errMsg).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type DashboardRepository struct {
	mock.Mock
}

func (m *DashboardRepository) Stats(ctx context.Context, scope repository.DashboardScope) (*model.DashboardStats, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardStats), args.Error(1)
}
