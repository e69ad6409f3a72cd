package invoice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
}

type mockService struct {
	mock.Mock
}

func (m *mockService) invoice(args mock.Arguments) (*model.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *mockService) CreateInvoice(ctx context.Context, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	return m.invoice(m.Called(ctx, req))
}

func (m *mockService) GetInvoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	return m.invoice(m.Called(ctx, id))
}

func (m *mockService) UpdateInvoice(ctx context.Context, id uuid.UUID, req *model.UpdateInvoiceRequest) (*model.Invoice, error) {
	return m.invoice(m.Called(ctx, id, req))
}

func (m *mockService) UpdatePayment(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.Invoice, error) {
	return m.invoice(m.Called(ctx, id, req))
}

func (m *mockService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) ListInvoices(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Invoice), args.Get(1).(int64), args.Error(2)
}

type tableSource struct{}

func (tableSource) PrincipalFor(_ context.Context, s *model.Session) *ability.Principal {
	return &ability.Principal{UserID: s.UserID, RoleID: s.RoleID, Ability: ability.Build(ability.RulesForRole(s.RoleID))}
}

func setup(t *testing.T) (*gin.Engine, *mockService, func(model.RoleID) string) {
	t.Helper()
	tokens := auth.NewManager("test-secret", "clinic-api", time.Hour)
	authz := middleware.NewAuthMiddleware(tokens, tableSource{}, metrics.NewWithRegistry("test", prometheus.NewRegistry()))

	svc := &mockService{}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1", authz.Authenticate()), authz)

	bearer := func(role model.RoleID) string {
		tok, _, err := tokens.Generate(&model.Session{UserID: uuid.New(), RoleID: role})
		require.NoError(t, err)
		return tok
	}
	return r, svc, bearer
}

func send(r http.Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdatePayment(t *testing.T) {
	r, svc, bearer := setup(t)
	id := uuid.New()
	svc.On("UpdatePayment", mock.Anything, id, mock.MatchedBy(func(req *model.PaymentRequest) bool {
		return req.PaidAmount.Equal(decimal.RequireFromString("120.50"))
	})).Return(&model.Invoice{Base: model.Base{ID: id}}, nil)

	w := send(r, http.MethodPut, "/api/v1/invoices/"+id.String()+"/payment", bearer(model.RoleAdmin), `{"paid_amount":"120.50"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestUpdatePaymentLockedInvoice(t *testing.T) {
	r, svc, bearer := setup(t)
	id := uuid.New()
	svc.On("UpdatePayment", mock.Anything, id, mock.Anything).Return(nil, errors.Forbidden("invoice is paid"))

	w := send(r, http.MethodPut, "/api/v1/invoices/"+id.String()+"/payment", bearer(model.RoleAdmin), `{"paid_amount":"1"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "invoice is paid")
}

func TestPatientCannotPayInvoice(t *testing.T) {
	r, svc, bearer := setup(t)
	w := send(r, http.MethodPut, "/api/v1/invoices/"+uuid.NewString()+"/payment", bearer(model.RolePatient), `{"paid_amount":"1"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	svc.AssertNotCalled(t, "UpdatePayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestMalformedBody(t *testing.T) {
	r, svc, bearer := setup(t)
	w := send(r, http.MethodPost, "/api/v1/invoices", bearer(model.RoleAdmin), `{"patient_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateInvoice", mock.Anything, mock.Anything)
}

func TestListInvoicesPatientFilter(t *testing.T) {
	r, svc, bearer := setup(t)
	patientID := uuid.New()
	svc.On("ListInvoices", mock.Anything, mock.MatchedBy(func(f *model.InvoiceFilters) bool {
		return f.PatientID == patientID
	})).Return([]*model.Invoice{}, int64(0), nil)

	w := send(r, http.MethodGet, "/api/v1/invoices?patient_id="+patientID.String(), bearer(model.RoleDoctor), "")
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
