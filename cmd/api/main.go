package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/config"
	appointmentHandler "github.com/jwalitptl/clinic-api/internal/handler/appointment"
	auditHandler "github.com/jwalitptl/clinic-api/internal/handler/audit"
	authHandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/clinic-api/internal/handler/dashboard"
	doctorHandler "github.com/jwalitptl/clinic-api/internal/handler/doctor"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	invoiceHandler "github.com/jwalitptl/clinic-api/internal/handler/invoice"
	patientHandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	rbacHandler "github.com/jwalitptl/clinic-api/internal/handler/rbac"
	userHandler "github.com/jwalitptl/clinic-api/internal/handler/user"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	appointmentService "github.com/jwalitptl/clinic-api/internal/service/appointment"
	auditService "github.com/jwalitptl/clinic-api/internal/service/audit"
	authService "github.com/jwalitptl/clinic-api/internal/service/auth"
	dashboardService "github.com/jwalitptl/clinic-api/internal/service/dashboard"
	doctorService "github.com/jwalitptl/clinic-api/internal/service/doctor"
	invoiceService "github.com/jwalitptl/clinic-api/internal/service/invoice"
	medicalService "github.com/jwalitptl/clinic-api/internal/service/medical"
	patientService "github.com/jwalitptl/clinic-api/internal/service/patient"
	rbacService "github.com/jwalitptl/clinic-api/internal/service/rbac"
	"github.com/jwalitptl/clinic-api/internal/service/scope"
	userService "github.com/jwalitptl/clinic-api/internal/service/user"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	redisbroker "github.com/jwalitptl/clinic-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/ratelimit"
	"github.com/jwalitptl/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.Load(os.Getenv("CLINIC_CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := postgres.NewDB(ctx, cfg.Database)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := postgres.CreateSchema(ctx, db)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create schema")
		}
	}

	cipher, err := security.NewFieldCipher(cfg.Security.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid security.encryption_key")
	}
	if cipher == nil {
		log.Warn().Msg("security.encryption_key not set, medical records are stored in plain text")
	}

	m := metrics.New(cfg.Metrics.Namespace)

	limiter, closeStore, err := newLimiter(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up rate limiting")
	}
	defer closeStore()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	recordRepo := postgres.NewMedicalRecordRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	seqRepo := postgres.NewSequenceRepository(db)
	dashboardRepo := postgres.NewDashboardRepository(db)

	// Initialize services
	auditor := auditService.NewService(auditRepo)
	resolver := scope.NewResolver(userRepo)
	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)

	rbacSvc := rbacService.NewService(userRepo, roleRepo, auditor, cfg.RBAC.GrantCacheTTL)
	authSvc := authService.NewService(userRepo, tokens, hasher, cfg.SuperAdmin, auditor)
	userSvc := userService.NewService(userRepo, hasher, auditor)
	patientSvc := patientService.NewService(patientRepo, userRepo, seqRepo, resolver, auditor)
	doctorSvc := doctorService.NewService(doctorRepo, userRepo, seqRepo, resolver, auditor)
	appointmentSvc := appointmentService.NewService(appointmentRepo, doctorRepo, resolver, auditor, m)
	invoiceSvc := invoiceService.NewService(invoiceRepo, appointmentRepo, seqRepo, resolver, auditor, m)
	medicalSvc := medicalService.NewService(recordRepo, patientRepo, resolver, cipher, auditor)
	dashboardSvc := dashboardService.NewService(dashboardRepo, resolver)

	authMiddleware := middleware.NewAuthMiddleware(tokens, rbacSvc, m)

	r := router.NewRouter(
		router.Config{
			Mode:           cfg.Server.Mode,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
			CORSOrigins:    cfg.Server.CORSOrigins,
			HSTS:           cfg.Server.HSTS,
		},
		authMiddleware,
		limiter,
		m,
		health.NewHandler(db, prometheus.DefaultGatherer),
		authHandler.NewHandler(authSvc),
		userHandler.NewHandler(userSvc),
		rbacHandler.NewHandler(rbacSvc),
		patientHandler.NewHandler(patientSvc, medicalSvc),
		doctorHandler.NewHandler(doctorSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		invoiceHandler.NewHandler(invoiceSvc),
		dashboardHandler.NewHandler(dashboardSvc),
		auditHandler.NewHandler(auditor),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// newLimiter builds the configured rate limiter. It returns a nil limiter
// when limiting is off.
func newLimiter(cfg *config.Config) (*ratelimit.Limiter, func(), error) {
	noop := func() {}
	if !cfg.RateLimit.Enabled {
		return nil, noop, nil
	}

	limits := ratelimit.Config{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window}
	if cfg.RateLimit.Store != "redis" {
		return ratelimit.New(ratelimit.NewMemoryStore(cfg.RateLimit.Window), limits), noop, nil
	}

	opts, err := redisbroker.ClientOptions(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		return nil, noop, err
	}
	client := goredis.NewClient(opts)
	return ratelimit.New(ratelimit.NewRedisStore(client), limits), func() { client.Close() }, nil
}
