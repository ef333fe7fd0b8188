// Package app wires the storefront's dependency graph and owns its
// lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/CMPHP00100/cetera-storefront/pkg/database"
	"github.com/CMPHP00100/cetera-storefront/pkg/health"
	"github.com/CMPHP00100/cetera-storefront/pkg/httpclient"
	pkgkafka "github.com/CMPHP00100/cetera-storefront/pkg/kafka"
	"github.com/CMPHP00100/cetera-storefront/pkg/tracing"

	"github.com/CMPHP00100/cetera-storefront/internal/catalog"
	"github.com/CMPHP00100/cetera-storefront/internal/config"
	"github.com/CMPHP00100/cetera-storefront/internal/email"
	"github.com/CMPHP00100/cetera-storefront/internal/event"
	handler "github.com/CMPHP00100/cetera-storefront/internal/handler/http"
	"github.com/CMPHP00100/cetera-storefront/internal/migrations"
	"github.com/CMPHP00100/cetera-storefront/internal/payment/simulated"
	"github.com/CMPHP00100/cetera-storefront/internal/repository/memory"
	pgrepo "github.com/CMPHP00100/cetera-storefront/internal/repository/postgres"
	redisrepo "github.com/CMPHP00100/cetera-storefront/internal/repository/redis"
	"github.com/CMPHP00100/cetera-storefront/internal/service"

	"github.com/prometheus/client_golang/prometheus"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	sessions       *memory.SessionStore
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
		Enabled:        cfg.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Postgres pool for the order ledger, with schema migration.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPassword
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSLMode

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("connected to Postgres",
		slog.String("host", cfg.PostgresHost),
		slog.String("db", cfg.PostgresDB),
	)

	// Redis client for the cart store.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Catalog from the embedded seed feed.
	cat, err := catalog.Load(logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	// Email sender: mail API behind a circuit breaker when configured,
	// logging sender otherwise.
	var sender email.Sender
	if cfg.MailAPIEndpoint != "" {
		mailClient := httpclient.NewCircuitBreakerClient(
			httpclient.New(httpclient.DefaultConfig()),
			httpclient.DefaultCircuitBreakerConfig("mail-api"),
			logger,
		)
		sender = email.NewHTTPSender(mailClient, cfg.MailAPIEndpoint, cfg.MailFrom, logger)
	} else {
		sender = email.NewMockSender(logger)
	}

	// Build the dependency graph.
	cartTTL := time.Duration(cfg.CartTTL) * time.Hour
	cartRepo := redisrepo.NewCartRepository(rdb, cartTTL)
	orderRepo := pgrepo.NewOrderRepository(pool)
	sessions := memory.NewSessionStore()
	eventProducer := event.NewProducer(producer, logger)
	metrics := service.NewMetrics(prometheus.DefaultRegisterer)
	provider := simulated.New(logger, 150*time.Millisecond)

	cartService := service.NewCartService(cartRepo, cat, eventProducer, metrics, logger)
	checkoutService := service.NewCheckoutService(sessions, cartRepo, orderRepo, provider, eventProducer, sender, metrics, logger)
	orderService := service.NewOrderService(orderRepo, sender, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(
		cartService,
		checkoutService,
		orderService,
		provider,
		cat,
		healthHandler,
		handler.RouterConfig{
			JWTSecret:   cfg.JWTSecret,
			ChargeRPS:   cfg.ChargeRPS,
			ChargeBurst: cfg.ChargeBurst,
		},
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		rdb:            rdb,
		producer:       producer,
		sessions:       sessions,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

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

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.sessions.Close()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
