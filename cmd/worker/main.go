package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/config"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/mail"
	redisbroker "github.com/jwalitptl/clinic-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/worker"
)

const healthAddr = ":8081"

func main() {
	cfg, err := config.Load(os.Getenv("CLINIC_CONFIG_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if cfg.Redis.URL == "" {
		log.Fatal().Msg("redis.url is required for the worker")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := postgres.NewDB(connectCtx, cfg.Database)
	if err != nil {
		connectCancel()
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	brokerCfg := redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}
	opts, err := redisbroker.ClientOptions(brokerCfg)
	if err != nil {
		connectCancel()
		log.Fatal().Err(err).Msg("invalid redis configuration")
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(connectCtx).Err(); err != nil {
		connectCancel()
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	connectCancel()

	broker := redisbroker.NewRedisBroker(client, brokerCfg)
	defer broker.Close()

	m := metrics.New(cfg.Metrics.Namespace)

	outboxRepo := postgres.NewOutboxRepository(db)
	processor, err := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay,
		MaxRetries:    cfg.Outbox.MaxRetries,
		Channel:       cfg.Outbox.Channel,
	}, m)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid outbox configuration")
	}

	retention := worker.NewRetentionWorker(
		postgres.NewAuditRepository(db),
		outboxRepo,
		cfg.Audit.RetentionDays,
		cfg.Outbox.Retention,
		cfg.Audit.CleanupInterval,
	)

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
			log.Info().Str("component", name).Msg("stopped")
		}()
	}

	run("outbox", processor.Start)
	run("retention", retention.Start)

	if cfg.Mail.Enabled {
		mailer := mail.New(mail.Config{
			Host:      cfg.Mail.Host,
			Port:      cfg.Mail.Port,
			Username:  cfg.Mail.Username,
			Password:  cfg.Mail.Password,
			From:      cfg.Mail.From,
			PerSecond: cfg.Mail.PerSecond,
			Burst:     cfg.Mail.Burst,
		})
		receipts := notification.NewService(postgres.NewPatientRepository(db), mailer)
		run("receipts", func(ctx context.Context) {
			if err := broker.Subscribe(ctx, cfg.Outbox.Channel, receipts.Handle); err != nil {
				log.Error().Err(err).Msg("receipt subscriber failed")
			}
		})
	}

	srv := healthServer(db.PingContext)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health check server failed")
		}
	}()

	// Handle shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	wg.Wait()
}

func healthServer(ping func(context.Context) error) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{Addr: healthAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
