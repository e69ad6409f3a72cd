package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/ratelimit"
)

// Handler is a resource whose routes are gated per action.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

// PublicHandler owns routes that answer without a token.
type PublicHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
}

// SessionHandler owns routes any authenticated caller may use.
type SessionHandler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler owns login plus the caller's own session.
type AuthHandler interface {
	PublicHandler
	SessionHandler
}

type Config struct {
	Mode           string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	CORSOrigins    []string
	HSTS           bool
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	health    SessionHandler
	authH     AuthHandler
	resources []Handler
}

func NewRouter(
	config Config,
	auth *middleware.AuthMiddleware,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	health SessionHandler,
	authH AuthHandler,
	resources ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.SecurityHeaders(middleware.SecurityConfig{HSTS: config.HSTS, HSTSMaxAge: 31536000}),
		middleware.CORS(middleware.DefaultCORSConfig(config.CORSOrigins)),
		middleware.Metrics(m),
	)
	if config.MaxBodyBytes > 0 {
		engine.Use(middleware.SizeLimit(config.MaxBodyBytes))
	}
	if config.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(config.RequestTimeout))
	}
	if limiter != nil {
		engine.Use(middleware.RateLimit(limiter, m))
	}

	return &Router{
		engine:    engine,
		auth:      auth,
		health:    health,
		authH:     authH,
		resources: resources,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.health.RegisterRoutes(api)
	r.authH.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.authH.RegisterRoutes(protected)
	for _, h := range r.resources {
		h.RegisterRoutes(protected, r.auth)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
