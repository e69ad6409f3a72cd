package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

// PatientLookup resolves where a receipt goes.
type PatientLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service mails a receipt when an invoice or appointment becomes paid.
// Other event types are ignored.
type Service struct {
	patients PatientLookup
	mailer   Mailer
}

func NewService(patients PatientLookup, mailer Mailer) *Service {
	return &Service{patients: patients, mailer: mailer}
}

// Handle is a messaging.Handler.
func (s *Service) Handle(ctx context.Context, msg messaging.Message) error {
	switch msg.Type {
	case model.EventInvoicePaid, model.EventAppointmentPaid:
	default:
		return nil
	}

	var ev model.PaymentEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}

	patient, err := s.patients.Get(ctx, ev.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load patient %s: %w", ev.PatientID, err)
	}
	if patient.Email == nil || *patient.Email == "" {
		log.Debug().Str("patient_id", ev.PatientID.String()).Msg("no email on file, receipt skipped")
		return nil
	}

	subject, body := receipt(patient.Name, ev)
	return s.mailer.Send(ctx, *patient.Email, subject, body)
}

func receipt(name string, ev model.PaymentEvent) (string, string) {
	what := "appointment"
	if ev.ResourceType == model.AuditResourceInvoice {
		what = "invoice"
	}
	ref := ev.Reference
	if ref == "" {
		ref = ev.ResourceID.String()
	}

	subject := fmt.Sprintf("Payment received for %s %s", what, ref)
	body := fmt.Sprintf("Dear %s,\n\nWe received your payment of %s against %s %s (total %s).",
		name, ev.PaidAmount, what, ref, ev.TotalAmount)
	if ev.PaymentDate != nil {
		body += fmt.Sprintf("\nPayment date: %s.", ev.PaymentDate.Format(model.DateLayout))
	}
	return subject, body + "\n\nThank you.\n"
}
