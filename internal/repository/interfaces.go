package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// AppointmentMutation changes a row-locked appointment in place. The returned
// event, if any, is stored in the same transaction.
type AppointmentMutation func(apt *model.Appointment) (*model.OutboxEvent, error)

// InvoiceMutation is AppointmentMutation for invoices.
type InvoiceMutation func(inv *model.Invoice) (*model.OutboxEvent, error)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, int64, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
		GetLinks(ctx context.Context, id uuid.UUID) (*model.UserLink, error)
	}

	RoleRepository interface {
		Get(ctx context.Context, id model.RoleID) (*model.Role, error)
		List(ctx context.Context) ([]*model.Role, error)
		ListGrants(ctx context.Context, roleID model.RoleID) ([]model.RolePermission, error)
		ReplaceGrants(ctx context.Context, roleID model.RoleID, grants []model.RolePermission) error
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int64, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int64, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, id uuid.UUID, fn AppointmentMutation) (*model.Appointment, error)
		// Delete removes the appointment if guard accepts the locked row.
		Delete(ctx context.Context, id uuid.UUID, guard func(*model.Appointment) error) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		Update(ctx context.Context, id uuid.UUID, fn InvoiceMutation) (*model.Invoice, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, int64, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecord, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, int64, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}

	SequenceRepository interface {
		// Next atomically allocates the next value of the named sequence.
		Next(ctx context.Context, name string) (int64, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	DashboardRepository interface {
		Stats(ctx context.Context, scope DashboardScope) (*model.DashboardStats, error)
	}
)

// DashboardScope narrows stats to one doctor. The zero value covers the
// whole clinic.
type DashboardScope struct {
	DoctorID *uuid.UUID
}
