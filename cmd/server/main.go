package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gobank/internal/adapter/http"
	"github.com/iho/gobank/internal/adapter/http/handler"
	"github.com/iho/gobank/internal/adapter/http/middleware"
	"github.com/iho/gobank/internal/adapter/messaging/rabbitmq"
	mongoRepo "github.com/iho/gobank/internal/adapter/repository/mongo"
	postgresRepo "github.com/iho/gobank/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobank/internal/adapter/repository/redis"
	"github.com/iho/gobank/internal/infrastructure/config"
	"github.com/iho/gobank/internal/infrastructure/eventpublisher"
	"github.com/iho/gobank/internal/infrastructure/logger"
	"github.com/iho/gobank/internal/infrastructure/metrics"
	"github.com/iho/gobank/internal/infrastructure/mongo"
	"github.com/iho/gobank/internal/infrastructure/postgres"
	rabbitInfra "github.com/iho/gobank/internal/infrastructure/rabbitmq"
	"github.com/iho/gobank/internal/infrastructure/redis"
	"github.com/iho/gobank/internal/usecase"
)

const (
	serviceName       = "gobank-api"
	limiterSweepEvery = 10 * time.Minute
	limiterMaxIdle    = 30 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: serviceName})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Connect to MongoDB
	mongoClient, mongoDB, err := mongo.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.WithoutCancel(ctx))
	log.Info().Msg("connected to mongo")

	accountRepo := mongoRepo.NewAccountRepository(mongoDB.Collection(cfg.MongoAccountsCollection))
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}

	checks := map[string]handler.CheckFunc{
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
	}

	// Transfers are tracked, and swept by the republisher, only when the
	// worker deduplicates them against the same store.
	var sagaStore usecase.SagaStore
	if cfg.SagaDedupEnabled {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info().Msg("connected to postgres")

		sagaStore = postgresRepo.NewSagaRepository(pool, postgresRepo.NewRetrier(log))
		checks["postgres"] = pool.Ping
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")
	checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

	// Connect to RabbitMQ
	conn, err := rabbitInfra.Dial(ctx, cfg.RabbitMQURL, serviceName, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}

	topology := rabbitInfra.Topology{Exchange: cfg.RabbitMQExchange, TransferQueue: cfg.RabbitMQTransferQueue}
	if err := topology.Declare(ch); err != nil {
		return err
	}

	publisher, err := rabbitmq.NewPublisher(ch, cfg.RabbitMQExchange, rabbitmq.PublisherOptions{
		ConfirmTimeout: cfg.PublishConfirmTimeout,
		BreakerTimeout: cfg.PublishBreakerTimeout,
	}, log)
	if err != nil {
		return err
	}
	log.Info().Str("exchange", cfg.RabbitMQExchange).Msg("connected to rabbitmq")
	checks["rabbitmq"] = conn.Ping

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	idGen := postgresRepo.NewULIDGenerator()

	var locker usecase.AccountLocker
	if cfg.AccountLockEnabled {
		lockOpts := redisRepo.DefaultLockOptions()
		lockOpts.Expiry = cfg.AccountLockExpiry
		locker = redisRepo.NewAccountLocker(redisClient, lockOpts, log)
	}

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, publisher, locker, idGen, log)
	transferUC := usecase.NewTransferUseCase(accountRepo, publisher, sagaStore, idGen, m, log).
		WithSagaCache(redisRepo.NewSagaCache(redisClient, cfg.SagaCacheTTL))

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(checks)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst).OnLimited(m.RateLimited)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		HealthHandler:    healthHandler,
		IdempotencyStore: redisRepo.NewIdempotencyStore(redisClient, redisRepo.DefaultIdempotencyPrefix),
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           log,
	})

	server := newHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if sagaStore != nil {
		republisher := eventpublisher.NewRepublisher(eventpublisher.Config{
			Source:    transferUC,
			Recorder:  m,
			Logger:    log,
			BatchSize: cfg.RepublishBatchSize,
			Interval:  cfg.RepublishInterval,
			MaxAge:    cfg.RepublishMaxAge,
		})

		g.Go(func() error {
			republisher.Start(gctx)
			return nil
		})
	} else {
		log.Warn().Msg("saga deduplication disabled, transfers are not tracked or republished")
	}

	g.Go(func() error {
		rateLimiter.RunCleanup(gctx, limiterSweepEvery, limiterMaxIdle)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}
