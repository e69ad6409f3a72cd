package appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/httputil"
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

func (m *mockService) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockService) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockService) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockService) UpdatePayment(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.Appointment, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *mockService) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockService) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*model.Appointment), args.Get(1).(int64), args.Error(2)
}

type tableSource struct{}

func (tableSource) PrincipalFor(_ context.Context, s *model.Session) *ability.Principal {
	return &ability.Principal{UserID: s.UserID, RoleID: s.RoleID, Ability: ability.Build(ability.RulesForRole(s.RoleID))}
}

type harness struct {
	router  *gin.Engine
	service *mockService
	tokens  *auth.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tokens := auth.NewManager("test-secret", "clinic-api", time.Hour)
	authz := middleware.NewAuthMiddleware(tokens, tableSource{}, metrics.NewWithRegistry("test", prometheus.NewRegistry()))

	h := &harness{router: gin.New(), service: &mockService{}, tokens: tokens}
	api := h.router.Group("/api/v1", authz.Authenticate())
	NewHandler(h.service).RegisterRoutes(api, authz)
	return h
}

func (h *harness) do(t *testing.T, role model.RoleID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	tok, _, err := h.tokens.Generate(&model.Session{UserID: uuid.New(), RoleID: role})
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetAppointmentBadID(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, model.RoleAdmin, http.MethodGet, "/api/v1/appointments/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	h.service.AssertNotCalled(t, "GetAppointment", mock.Anything, mock.Anything)
}

func TestCreateAppointment(t *testing.T) {
	h := newHarness(t)
	patientID, doctorID := uuid.New(), uuid.New()
	h.service.On("CreateAppointment", mock.Anything, mock.MatchedBy(func(r *model.CreateAppointmentRequest) bool {
		return r.PatientID == patientID && r.DoctorID == doctorID && r.Date == "2024-03-01"
	})).Return(&model.Appointment{Base: model.Base{ID: uuid.New()}, PatientID: patientID, DoctorID: doctorID}, nil)

	body := `{"patient_id":"` + patientID.String() + `","doctor_id":"` + doctorID.String() + `","date":"2024-03-01","time":"09:30"}`
	w := h.do(t, model.RoleAdmin, http.MethodPost, "/api/v1/appointments", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "success", decode(t, w).Status)
	h.service.AssertExpectations(t)
}

func TestCreateAppointmentValidation(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, model.RoleAdmin, http.MethodPost, "/api/v1/appointments", `{"date":"2024-03-01"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation failed", decode(t, w).Message)
}

func TestDeleteAppointmentForbiddenForPatient(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, model.RolePatient, http.MethodDelete, "/api/v1/appointments/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	h.service.AssertNotCalled(t, "DeleteAppointment", mock.Anything, mock.Anything)
}

func TestDeleteAppointment(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()
	h.service.On("DeleteAppointment", mock.Anything, id).Return(nil)

	w := h.do(t, model.RoleAdmin, http.MethodDelete, "/api/v1/appointments/"+id.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", errors.NotFound("appointment", nil), http.StatusNotFound},
		{"forbidden", errors.Forbidden("appointment is paid"), http.StatusForbidden},
		{"conflict", errors.Conflict("busy", nil), http.StatusConflict},
		{"unexpected", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			id := uuid.New()
			h.service.On("GetAppointment", mock.Anything, id).Return(nil, tt.err)

			w := h.do(t, model.RoleAdmin, http.MethodGet, "/api/v1/appointments/"+id.String(), "")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "error", decode(t, w).Status)
		})
	}
}

func TestListAppointmentsFilters(t *testing.T) {
	h := newHarness(t)
	doctorID := uuid.New()
	h.service.On("ListAppointments", mock.Anything, mock.MatchedBy(func(f *model.AppointmentFilters) bool {
		return f.DoctorID == doctorID && f.PatientID == uuid.Nil && f.Status == model.AppointmentStatusPending
	})).Return([]*model.Appointment{}, int64(0), nil)

	w := h.do(t, model.RoleDoctor, http.MethodGet, "/api/v1/appointments?status=pending&doctor_id="+doctorID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	h.service.AssertExpectations(t)

	w = h.do(t, model.RoleDoctor, http.MethodGet, "/api/v1/appointments?doctor_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
