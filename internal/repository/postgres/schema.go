package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// CreateSchema creates every table the repositories use and seeds the role
// rows. All statements are idempotent, so it is safe on every start.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	log.Info().Msg("creating database schema")

	statements := []string{
		createRolesTable,
		seedRoles,
		createRolePermissionsTable,
		createUsersTable,
		createPatientsTable,
		createDoctorsTable,
		createAppointmentsTable,
		createInvoicesTable,
		createMedicalRecordsTable,
		createAuditLogsTable,
		createSequencesTable,
		createOutboxTable,
		createIndexes,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

const (
	createRolesTable = `
		CREATE TABLE IF NOT EXISTS roles (
			id INTEGER PRIMARY KEY,
			name VARCHAR(50) NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		);`

	// Role 0 is the env-only super admin and has no row.
	seedRoles = `
		INSERT INTO roles (id, name, description) VALUES
			(-1, 'guest', 'Unverified account'),
			(211, 'superadmin', 'Clinic owner with full access'),
			(212, 'admin', 'Front desk and billing staff'),
			(213, 'doctor', 'Practitioner'),
			(216, 'patient', 'Patient portal user')
		ON CONFLICT (id) DO NOTHING;`

	createRolePermissionsTable = `
		CREATE TABLE IF NOT EXISTS role_permissions (
			role_id INTEGER NOT NULL REFERENCES roles(id) ON DELETE CASCADE,
			subject VARCHAR(50) NOT NULL,
			action VARCHAR(20) NOT NULL,
			can_access SMALLINT NOT NULL DEFAULT 1 CHECK (can_access IN (0, 1)),
			PRIMARY KEY (role_id, subject, action)
		);`

	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			phone VARCHAR(50),
			role_id INTEGER NOT NULL REFERENCES roles(id),
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			last_login_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	createPatientsTable = `
		CREATE TABLE IF NOT EXISTS patients (
			id UUID PRIMARY KEY,
			code VARCHAR(20) NOT NULL UNIQUE,
			user_id UUID UNIQUE REFERENCES users(id) ON DELETE SET NULL,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(50),
			date_of_birth DATE,
			gender VARCHAR(20),
			address TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	createDoctorsTable = `
		CREATE TABLE IF NOT EXISTS doctors (
			id UUID PRIMARY KEY,
			code VARCHAR(20) NOT NULL UNIQUE,
			user_id UUID UNIQUE REFERENCES users(id) ON DELETE SET NULL,
			name VARCHAR(255) NOT NULL,
			specialization VARCHAR(255) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(50),
			consultation_fee NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (consultation_fee >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	createAppointmentsTable = `
		CREATE TABLE IF NOT EXISTS appointments (
			id UUID PRIMARY KEY,
			patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE RESTRICT,
			doctor_id UUID NOT NULL REFERENCES doctors(id) ON DELETE RESTRICT,
			appointment_date DATE NOT NULL,
			appointment_time TIME NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			notes TEXT NOT NULL DEFAULT '',
			total_amount NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (total_amount >= 0),
			paid_amount NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (paid_amount >= 0),
			payment_status VARCHAR(10) NOT NULL DEFAULT 'unpaid',
			payment_date DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	createInvoicesTable = `
		CREATE TABLE IF NOT EXISTS invoices (
			id UUID PRIMARY KEY,
			number VARCHAR(20) NOT NULL UNIQUE,
			patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE RESTRICT,
			appointment_id UUID REFERENCES appointments(id) ON DELETE RESTRICT,
			due_date TIMESTAMPTZ,
			description TEXT NOT NULL DEFAULT '',
			total_amount NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (total_amount >= 0),
			paid_amount NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (paid_amount >= 0),
			payment_status VARCHAR(10) NOT NULL DEFAULT 'unpaid',
			payment_date DATE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	// Diagnosis, treatment and notes may hold "enc:" sealed values, so they
	// are unbounded TEXT.
	createMedicalRecordsTable = `
		CREATE TABLE IF NOT EXISTS medical_records (
			id UUID PRIMARY KEY,
			patient_id UUID NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
			doctor_id UUID REFERENCES doctors(id) ON DELETE SET NULL,
			appointment_id UUID REFERENCES appointments(id) ON DELETE SET NULL,
			diagnosis TEXT NOT NULL,
			treatment TEXT NOT NULL DEFAULT '',
			prescription JSONB NOT NULL DEFAULT '[]',
			notes TEXT NOT NULL DEFAULT '',
			created_by UUID NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	// user_id has no foreign key: the env super admin has no users row and
	// logs must outlive deleted users.
	createAuditLogsTable = `
		CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			role_id INTEGER NOT NULL,
			action VARCHAR(50) NOT NULL,
			resource_type VARCHAR(50) NOT NULL,
			resource_id VARCHAR(100) NOT NULL DEFAULT '',
			status VARCHAR(20) NOT NULL,
			error_message TEXT,
			ip_address VARCHAR(64) NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	createSequencesTable = `
		CREATE TABLE IF NOT EXISTS id_sequences (
			name VARCHAR(50) PRIMARY KEY,
			value BIGINT NOT NULL
		);`

	createOutboxTable = `
		CREATE TABLE IF NOT EXISTS outbox_events (
			id UUID PRIMARY KEY,
			event_type VARCHAR(100) NOT NULL,
			payload JSONB NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			error_message TEXT,
			retry_count INTEGER NOT NULL DEFAULT 0,
			claimed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			processed_at TIMESTAMPTZ
		);`

	createIndexes = `
		CREATE INDEX IF NOT EXISTS idx_appointments_patient ON appointments(patient_id);
		CREATE INDEX IF NOT EXISTS idx_appointments_doctor_date ON appointments(doctor_id, appointment_date);
		CREATE INDEX IF NOT EXISTS idx_invoices_patient ON invoices(patient_id);
		CREATE INDEX IF NOT EXISTS idx_invoices_appointment ON invoices(appointment_id);
		CREATE INDEX IF NOT EXISTS idx_medical_records_patient ON medical_records(patient_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at);
		CREATE INDEX IF NOT EXISTS idx_audit_logs_user ON audit_logs(user_id);
		CREATE INDEX IF NOT EXISTS idx_outbox_status_created ON outbox_events(status, created_at);`
)
