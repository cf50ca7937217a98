package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fides/internal/alert"
	"fides/internal/audit"
	customerhandler "fides/internal/customer/handler"
	customerservice "fides/internal/customer/service"
	"fides/internal/fraud"
	fraudmetrics "fides/internal/fraud/metrics"
	"fides/internal/fraud/tracer"
	"fides/internal/ledger"
	loanhandler "fides/internal/loan/handler"
	loanmetrics "fides/internal/loan/metrics"
	loanservice "fides/internal/loan/service"
	"fides/internal/platform/config"
	"fides/internal/platform/database"
	"fides/internal/platform/health"
	"fides/internal/platform/kafka"
	"fides/internal/platform/kafka/producer"
	"fides/internal/platform/logger"
	"fides/internal/platform/metrics"
	"fides/internal/platform/redis"
	"fides/internal/seeder"
	"fides/internal/token"
	httptransport "fides/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing fides",
		"addr", cfg.Server.Addr,
		"store", cfg.Store.Driver,
		"environment", cfg.Server.Environment,
	)

	if err := run(cfg, log); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	healthHandler := health.New(cfg.Server.Environment)

	// Persistence: memory for local runs, postgres behind FIDES_STORE=postgres.
	var (
		customers    ledger.CustomerStore
		applications ledger.ApplicationStore
		auditStore   audit.Store
	)
	switch cfg.Store.Driver {
	case "postgres":
		dbCfg := database.DefaultConfig()
		dbCfg.URL = cfg.Store.DatabaseURL
		pool, err := database.New(dbCfg)
		if err != nil {
			return err
		}
		if pool == nil {
			return errors.New("FIDES_STORE=postgres requires FIDES_DATABASE_URL")
		}
		defer pool.Close()

		customers = ledger.NewPostgresCustomerStore(pool.DB())
		applications = ledger.NewPostgresApplicationStore(pool.DB())
		auditStore = audit.NewPostgresStore(pool.DB())

		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		go recordPoolStats(pool)
	default:
		memCustomers := ledger.NewMemoryCustomerStore()
		customers = memCustomers
		applications = ledger.NewMemoryApplicationStore(memCustomers)
		auditStore = audit.NewInMemoryStore()
	}

	auditPublisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.Audit.BufferSize),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	// Alert chain: kafka when brokers are configured, log otherwise, with
	// redis-backed dedup in front when redis is configured.
	var notifier alert.Notifier = alert.NewLogNotifier(log)
	if cfg.Kafka.Brokers != "" {
		prod, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.Brokers,
			Acks:            "all",
			Retries:         3,
			DeliveryTimeout: 30 * time.Second,
		}, log)
		if err != nil {
			return err
		}
		defer prod.Close()
		notifier = alert.NewKafkaNotifier(prod, cfg.Kafka.AlertTopic)

		kafkaCheck := kafka.NewHealthChecker(cfg.Kafka.Brokers)
		healthHandler.RegisterCheck(kafkaCheck.Name(), func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return kafkaCheck.Check(ctx)
		})
	}
	if cfg.Store.RedisURL != "" {
		redisClient, err := redis.New(cfg.Redis())
		if err != nil {
			return err
		}
		defer redisClient.Close()
		notifier = alert.NewDeduper(notifier, redisClient, cfg.Alert.DedupTTL, log)

		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
		go recordRedisStats(redisClient)
	}

	evaluator, err := fraud.New(applications, customers, fraud.Config{
		MaxDailyApplications: cfg.Fraud.MaxDailyApplications,
		SharedDomainLimit:    cfg.Fraud.SharedDomainLimit,
		MaxAmount:            cfg.Fraud.MaxAmount,
		HighRiskAmount:       cfg.Fraud.HighRiskAmount,
		HighRiskBirthYear:    cfg.Fraud.HighRiskBirthYear,
	},
		fraud.WithLogger(log),
		fraud.WithMetrics(fraudmetrics.New()),
		fraud.WithTracer(tracer.NewOTel()),
	)
	if err != nil {
		return err
	}

	loans, err := loanservice.New(customers, applications, evaluator, loanservice.Config{
		MinAmount:       cfg.Fraud.MinAmount,
		CooldownWindow:  cfg.Fraud.CooldownWindow,
		AlertRecipients: cfg.Alert.Recipients,
	},
		loanservice.WithLogger(log),
		loanservice.WithAuditPublisher(auditPublisher),
		loanservice.WithAlertNotifier(notifier),
		loanservice.WithMetrics(loanmetrics.New()),
	)
	if err != nil {
		return err
	}

	accounts, err := customerservice.New(customers,
		customerservice.WithLogger(log),
		customerservice.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		return err
	}

	if cfg.Seed {
		if err := seeder.New(customers, applications, auditStore, log).SeedAll(context.Background()); err != nil {
			return err
		}
	}

	tokens := token.NewService(cfg.Server.JWTSigningKey, cfg.Server.TokenIssuer, cfg.Server.TokenTTL)
	httpMetrics := metrics.New()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Customers: customerhandler.New(accounts, tokens, log, httpMetrics),
		Loans:     loanhandler.New(loans, log),
		Health:    healthHandler,
		Tokens:    tokens,
		Metrics:   httpMetrics,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server stopped")
	return nil
}

func recordPoolStats(pool *database.Pool) {
	for range time.Tick(15 * time.Second) {
		pool.RecordPoolStats()
	}
}

func recordRedisStats(client *redis.Client) {
	for range time.Tick(15 * time.Second) {
		client.RecordPoolStats()
	}
}
