package notification

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository/mocks"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

func paidMessage(t *testing.T, eventType string, ev model.PaymentEvent) messaging.Message {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return messaging.Message{ID: uuid.New(), Type: eventType, Payload: payload}
}

func TestHandleSendsInvoiceReceipt(t *testing.T) {
	patients := &mocks.PatientRepository{}
	mailer := &mockMailer{}
	svc := NewService(patients, mailer)

	email := "ana@example.com"
	patientID := uuid.New()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	patients.On("Get", mock.Anything, patientID).Return(&model.Patient{Base: model.Base{ID: patientID}, Name: "Ana", Email: &email}, nil)
	mailer.On("Send", mock.Anything, email, "Payment received for invoice INV-000007", mock.MatchedBy(func(body string) bool {
		return strings.Contains(body, "Dear Ana") && strings.Contains(body, "120.00") && strings.Contains(body, "2024-03-01")
	})).Return(nil)

	err := svc.Handle(context.Background(), paidMessage(t, model.EventInvoicePaid, model.PaymentEvent{
		ResourceType: model.AuditResourceInvoice,
		ResourceID:   uuid.New(),
		PatientID:    patientID,
		Reference:    "INV-000007",
		TotalAmount:  "120.00",
		PaidAmount:   "120.00",
		PaymentDate:  &day,
	}))
	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestHandleSkipsPatientWithoutEmail(t *testing.T) {
	patients := &mocks.PatientRepository{}
	mailer := &mockMailer{}
	svc := NewService(patients, mailer)

	patientID := uuid.New()
	patients.On("Get", mock.Anything, patientID).Return(&model.Patient{Base: model.Base{ID: patientID}, Name: "Bo"}, nil)

	err := svc.Handle(context.Background(), paidMessage(t, model.EventAppointmentPaid, model.PaymentEvent{
		ResourceType: model.AuditResourceAppointment,
		PatientID:    patientID,
	}))
	require.NoError(t, err)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	patients := &mocks.PatientRepository{}
	svc := NewService(patients, &mockMailer{})

	err := svc.Handle(context.Background(), messaging.Message{Type: model.EventAppointmentCreated, Payload: []byte(`{}`)})
	require.NoError(t, err)
	patients.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestHandleRejectsBadPayload(t *testing.T) {
	svc := NewService(&mocks.PatientRepository{}, &mockMailer{})
	err := svc.Handle(context.Background(), messaging.Message{Type: model.EventInvoicePaid, Payload: []byte(`[`)})
	assert.Error(t, err)
}
