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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/iho/gobank/internal/adapter/http/handler"
	"github.com/iho/gobank/internal/adapter/messaging/rabbitmq"
	mongoRepo "github.com/iho/gobank/internal/adapter/repository/mongo"
	postgresRepo "github.com/iho/gobank/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gobank/internal/adapter/repository/redis"
	"github.com/iho/gobank/internal/infrastructure/config"
	"github.com/iho/gobank/internal/infrastructure/logger"
	"github.com/iho/gobank/internal/infrastructure/metrics"
	"github.com/iho/gobank/internal/infrastructure/mongo"
	"github.com/iho/gobank/internal/infrastructure/postgres"
	rabbitInfra "github.com/iho/gobank/internal/infrastructure/rabbitmq"
	"github.com/iho/gobank/internal/infrastructure/redis"
	"github.com/iho/gobank/internal/usecase"
)

const serviceName = "gobank-worker"

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
		log.Error().Err(err).Msg("worker exited with error")
		os.Exit(1)
	}

	log.Info().Msg("worker stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, mongoDB, err := mongo.Connect(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.WithoutCancel(ctx))
	log.Info().Msg("connected to mongo")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	deps := usecase.TransferSagaDeps{
		Accounts: mongoRepo.NewAccountRepository(mongoDB.Collection(cfg.MongoAccountsCollection)),
		IDs:      postgresRepo.NewULIDGenerator(),
		Metrics:  m,
		Logger:   log,
	}

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
		log.Info().Msg("connected to postgres, saga deduplication enabled")

		deps.Sagas = postgresRepo.NewSagaRepository(pool, postgresRepo.NewRetrier(log))
	}

	if cfg.AccountLockEnabled {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{})
		if err != nil {
			return err
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis, account locking enabled")

		lockOpts := redisRepo.DefaultLockOptions()
		lockOpts.Expiry = cfg.AccountLockExpiry
		deps.Locker = redisRepo.NewAccountLocker(redisClient, lockOpts, log)
	}

	conn, err := rabbitInfra.Dial(ctx, cfg.RabbitMQURL, serviceName, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Outcomes are published on their own confirm-mode channel.
	publishCh, err := conn.Channel()
	if err != nil {
		return err
	}

	consumeCh, err := conn.Channel()
	if err != nil {
		return err
	}

	topology := rabbitInfra.Topology{Exchange: cfg.RabbitMQExchange, TransferQueue: cfg.RabbitMQTransferQueue}
	if err := topology.Declare(consumeCh); err != nil {
		return err
	}

	deps.Publisher, err = rabbitmq.NewPublisher(publishCh, cfg.RabbitMQExchange, rabbitmq.PublisherOptions{
		ConfirmTimeout: cfg.PublishConfirmTimeout,
		BreakerTimeout: cfg.PublishBreakerTimeout,
	}, log)
	if err != nil {
		return err
	}

	consumer := rabbitmq.NewConsumer(consumeCh, usecase.NewTransferSaga(deps), rabbitmq.ConsumerOptions{
		Queue:       cfg.RabbitMQTransferQueue,
		Tag:         cfg.WorkerConsumerTag,
		Concurrency: cfg.WorkerConcurrency,
	}, log)

	server := newOpsServer(cfg.WorkerMetricsPort, reg, map[string]handler.CheckFunc{
		"mongo":    func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
		"rabbitmq": conn.Ping,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("queue", cfg.RabbitMQTransferQueue).
			Int("concurrency", cfg.WorkerConcurrency).
			Msg("worker consuming transfer commands")

		err := consumer.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	})

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newOpsServer serves liveness, readiness and metrics for the worker.
func newOpsServer(port string, gatherer prometheus.Gatherer, checks map[string]handler.CheckFunc) *http.Server {
	health := handler.NewHealthHandler(checks)

	r := chi.NewRouter()
	r.Get("/health", health.Liveness)
	r.Get("/ready", health.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
