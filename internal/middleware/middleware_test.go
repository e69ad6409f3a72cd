package middleware

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
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type tableSource struct{}

func (tableSource) PrincipalFor(_ context.Context, s *model.Session) *ability.Principal {
	return &ability.Principal{UserID: s.UserID, RoleID: s.RoleID, Ability: ability.Build(ability.RulesForRole(s.RoleID))}
}

func newAuth(t *testing.T) (*AuthMiddleware, *auth.Manager) {
	t.Helper()
	tokens := auth.NewManager("test-secret", "clinic-api", time.Hour)
	return NewAuthMiddleware(tokens, tableSource{}, metrics.NewWithRegistry("test", prometheus.NewRegistry())), tokens
}

func token(t *testing.T, tokens *auth.Manager, role model.RoleID) string {
	t.Helper()
	tok, _, err := tokens.Generate(&model.Session{UserID: uuid.New(), RoleID: role})
	require.NoError(t, err)
	return tok
}

func do(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateRejectsMissingAndBadTokens(t *testing.T) {
	m, _ := newAuth(t)
	r := gin.New()
	r.GET("/x", m.Authenticate(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/x", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/x", "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireChecksAbility(t *testing.T) {
	m, tokens := newAuth(t)
	r := gin.New()
	r.DELETE("/invoices", m.Authenticate(), m.Require(ability.ActionDelete, ability.SubjectInvoices),
		func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/dashboard", m.Authenticate(), m.Require(ability.ActionRead, ability.SubjectDashboard),
		func(c *gin.Context) {
			p := ability.FromContext(c.Request.Context())
			c.String(http.StatusOK, p.RoleID.Name())
		})

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/invoices", token(t, tokens, model.RoleAdmin)).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/invoices", token(t, tokens, model.RoleDoctor)).Code)

	w := do(r, http.MethodGet, "/dashboard", token(t, tokens, model.RoleDoctor))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doctor", w.Body.String())

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/dashboard", token(t, tokens, model.RolePatient)).Code)
}

func TestRequestIDEchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
	assert.Equal(t, "abc-123", w.Body.String())

	w = do(r, http.MethodGet, "/x", "")
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}

func TestRateLimitPerRoute(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewMemoryStore(time.Minute), ratelimit.Config{Limit: 2, Window: time.Minute})
	r := gin.New()
	r.Use(RateLimit(limiter, nil))
	r.GET("/a", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/a", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/a", "").Code)
	w := do(r, http.MethodGet, "/a", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/b", "").Code)
}

func TestRateLimitSharesBucketForUnknownPaths(t *testing.T) {
	store := ratelimit.NewMemoryStore(time.Minute)
	limiter := ratelimit.New(store, ratelimit.Config{Limit: 2, Window: time.Minute})
	r := gin.New()
	r.Use(RateLimit(limiter, nil))

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/nope/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/nope/2", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/nope/3", "").Code)
	assert.Equal(t, 1, store.Len())
}

func TestRecoveryReturns500(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusGatewayTimeout, do(r, http.MethodGet, "/slow", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/fast", "").Code)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(8))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("this body is too long"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig([]string{"https://app.clinic.test"})))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.clinic.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.clinic.test", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

type statusQuery struct {
	Status model.AppointmentStatus `form:"status" binding:"omitempty,appointment_status"`
	Role   *model.RoleID           `form:"role_id" binding:"omitempty,role_id"`
}

func TestCustomValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		var q statusQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, FieldErrors(err))
			return
		}
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/x?status=confirmed&role_id=213", "").Code)

	w := do(r, http.MethodGet, "/x?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var fields []ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fields))
	require.Len(t, fields, 1)
	assert.Equal(t, "status", fields[0].Field)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/x?role_id=7", "").Code)
}
