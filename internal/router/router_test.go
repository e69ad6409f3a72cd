package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-api/internal/ability"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
)

type tableSource struct{}

func (tableSource) PrincipalFor(_ context.Context, s *model.Session) *ability.Principal {
	return &ability.Principal{UserID: s.UserID, RoleID: s.RoleID, Ability: ability.Build(ability.RulesForRole(s.RoleID))}
}

type stubHealth struct{}

func (stubHealth) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })
}

type stubAuth struct{}

func (stubAuth) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func (stubAuth) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", func(c *gin.Context) { c.Status(http.StatusOK) })
}

type stubResource struct{}

func (stubResource) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	r.GET("/doctors", authz.Require(ability.ActionRead, ability.SubjectDoctor), func(c *gin.Context) { c.Status(http.StatusOK) })
}

func TestRouterSplitsPublicAndProtected(t *testing.T) {
	m := metrics.NewWithRegistry("test", prometheus.NewRegistry())
	authz := middleware.NewAuthMiddleware(auth.NewManager("secret", "clinic-api", time.Hour), tableSource{}, m)

	r := NewRouter(Config{Mode: gin.TestMode, RequestTimeout: time.Second, MaxBodyBytes: 1024},
		authz, nil, m, stubHealth{}, stubAuth{}, stubResource{})
	r.Setup()

	tests := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/api/v1/health/live", http.StatusOK},
		{http.MethodPost, "/api/v1/auth/login", http.StatusOK},
		{http.MethodGet, "/api/v1/auth/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/doctors", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.Engine().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		assert.Equal(t, tt.status, w.Code, tt.path)
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID), tt.path)
	}
}
