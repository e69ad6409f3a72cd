package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

// Domain event types written to the outbox.
const (
	EventAppointmentCreated = "appointment.created"
	EventAppointmentPaid    = "appointment.paid"
	EventInvoicePaid        = "invoice.paid"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// PaymentEvent is the payload of the *.paid events.
type PaymentEvent struct {
	ResourceType string     `json:"resource_type"`
	ResourceID   uuid.UUID  `json:"resource_id"`
	PatientID    uuid.UUID  `json:"patient_id"`
	Reference    string     `json:"reference"`
	TotalAmount  string     `json:"total_amount"`
	PaidAmount   string     `json:"paid_amount"`
	PaymentDate  *time.Time `json:"payment_date,omitempty"`
}
