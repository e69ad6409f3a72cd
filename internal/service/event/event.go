// Package event builds the outbox rows written alongside domain changes.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// New marshals payload into a pending outbox event.
func New(eventType string, payload interface{}) (*model.OutboxEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   data,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// Payment builds the event for a record that just became paid.
func Payment(eventType, resourceType string, id, patientID uuid.UUID, reference string, c model.Charge) (*model.OutboxEvent, error) {
	return New(eventType, model.PaymentEvent{
		ResourceType: resourceType,
		ResourceID:   id,
		PatientID:    patientID,
		Reference:    reference,
		TotalAmount:  c.TotalAmount.StringFixed(2),
		PaidAmount:   c.PaidAmount.StringFixed(2),
		PaymentDate:  c.PaymentDate,
	})
}

// AppointmentCreated is the payload of appointment.created.
type AppointmentCreated struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
}
