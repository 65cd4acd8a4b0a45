package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/audit"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/config"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/event"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/form"
	handler "github.com/jun-JUNJUN/dxeeworld-sub001/internal/handler/http"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/i18n"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository/postgres"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/repository/rediscache"
	"github.com/jun-JUNJUN/dxeeworld-sub001/internal/service"
	"github.com/jun-JUNJUN/dxeeworld-sub001/migrations"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/database"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/health"
	pkgkafka "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/kafka"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/middleware"
	"github.com/jun-JUNJUN/dxeeworld-sub001/pkg/tracing"
)

// App wires together all dependencies and runs the review engine.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	consumers      []*pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "review-engine",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Pass,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		MaxConnLifetime: time.Duration(cfg.Postgres.MaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.Postgres.MaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.Postgres.Host),
		slog.Int("port", cfg.Postgres.Port),
		slog.String("database", cfg.Postgres.DBName),
	)
	database.RegisterPoolMetrics(pool, "review-engine")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Initialize Redis client for the rating summary cache.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.Int("port", cfg.Redis.Port),
		slog.Int("db", cfg.Redis.DB),
	)

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.Kafka.Brokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.Kafka.Brokers))

	// Build the dependency graph.
	reviewRepo := postgres.NewReviewRepository(pool)
	companyRepo := postgres.NewCompanyRepository(pool)
	txManager := postgres.NewTxManager(pool)

	summaryCache := rediscache.NewSummaryCache(
		rdb,
		time.Duration(cfg.Redis.SummaryTTLSecs)*time.Second,
		rediscache.CircuitBreakerConfig{
			Name:         "rating-summary-cache",
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     time.Duration(cfg.CBInterval) * time.Second,
			Timeout:      time.Duration(cfg.CBTimeout) * time.Second,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		},
		logger,
	)

	eventProducer := event.NewProducer(producer, logger)

	catalog, err := i18n.Load()
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("load translation catalog: %w", err)
	}

	reviewService := service.NewReviewService(reviewRepo, companyRepo, txManager, summaryCache, eventProducer, logger)
	companyService := service.NewCompanyService(companyRepo, logger)
	ratingService := service.NewRatingService(companyRepo, txManager, summaryCache, eventProducer, logger)
	formService := service.NewFormService(form.NewSessionStore(catalog), catalog, logger)

	// Asynchronous rating summary audit, fed by the review events.
	var consumers []*pkgkafka.Consumer
	if cfg.Kafka.AuditEnabled {
		auditor := audit.NewAuditor(txManager, summaryCache, eventProducer, logger)
		store := pkgkafka.NewMemoryIdempotencyStore(time.Duration(cfg.Kafka.AuditIdempotencyTTLMins) * time.Minute)
		consumers = audit.NewConsumers(cfg.Kafka.Brokers, store, audit.NewConsumer(auditor, logger), logger)
	}

	// Health checks. Postgres is critical; the cache and broker degrade
	// gracefully, so they only mark the service degraded.
	healthHandler := health.NewHandler("review-engine")
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(
		reviewService,
		companyService,
		ratingService,
		formService,
		healthHandler,
		logger,
		corsCfg,
		cfg.PprofAllowedCIDRs,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		consumers:      consumers,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and audit consumers, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	for _, consumer := range a.consumers {
		c := consumer
		go func() {
			if err := c.Start(ctx); err != nil {
				a.logger.Error("audit consumer error", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush spans from drained requests)
// 3. Audit consumers and Kafka producer
// 4. Redis client and PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	for _, consumer := range a.consumers {
		if err := consumer.Close(); err != nil {
			a.logger.Error("audit consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
