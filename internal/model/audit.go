package model

import (
	"time"

	"github.com/google/uuid"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// AuditLog records one gated mutation. UserID is uuid.Nil for the env super
// admin and for unauthenticated callers.
type AuditLog struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	UserID       uuid.UUID   `json:"user_id" db:"user_id"`
	RoleID       RoleID      `json:"role_id" db:"role_id"`
	Action       string      `json:"action" db:"action"`
	ResourceType string      `json:"resource_type" db:"resource_type"`
	ResourceID   string      `json:"resource_id" db:"resource_id"`
	Status       AuditStatus `json:"status" db:"status"`
	ErrorMessage *string     `json:"error_message,omitempty" db:"error_message"`
	IPAddress    string      `json:"ip_address" db:"ip_address"`
	UserAgent    string      `json:"user_agent" db:"user_agent"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

const (
	// Action types
	AuditActionCreate  = "create"
	AuditActionUpdate  = "update"
	AuditActionDelete  = "delete"
	AuditActionPayment = "payment"
	AuditActionLogin   = "login"

	// Resource types
	AuditResourceUser          = "user"
	AuditResourceRole          = "role"
	AuditResourcePatient       = "patient"
	AuditResourceDoctor        = "doctor"
	AuditResourceAppointment   = "appointment"
	AuditResourceInvoice       = "invoice"
	AuditResourceMedicalRecord = "medical_record"
)

type AuditFilters struct {
	UserID       *uuid.UUID  `form:"-"`
	ResourceType string      `form:"resource_type"`
	ResourceID   string      `form:"resource_id"`
	Action       string      `form:"action"`
	Status       AuditStatus `form:"status" binding:"omitempty,oneof=success failure"`
	From         *time.Time  `form:"from" time_format:"2006-01-02"`
	To           *time.Time  `form:"to" time_format:"2006-01-02"`
	Pagination
}
