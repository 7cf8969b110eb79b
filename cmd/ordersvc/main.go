package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/vkarpenko/order-lifecycle-service/internal/application"
	"github.com/vkarpenko/order-lifecycle-service/internal/config"
	"github.com/vkarpenko/order-lifecycle-service/internal/inventory"
	"github.com/vkarpenko/order-lifecycle-service/internal/kafka"
	"github.com/vkarpenko/order-lifecycle-service/internal/logger"
	"github.com/vkarpenko/order-lifecycle-service/internal/migrate"
	"github.com/vkarpenko/order-lifecycle-service/internal/notification"
	"github.com/vkarpenko/order-lifecycle-service/internal/notification/noop"
	"github.com/vkarpenko/order-lifecycle-service/internal/presentation"
	"github.com/vkarpenko/order-lifecycle-service/internal/repository"
)

func main() {
	logger.Init()
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Warn("config load failed", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// DB pool
	pool, err := pgxpool.New(ctx, cfg.DB_STRING)
	if err != nil {
		logger.Warn("pgxpool new failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(pool.Ping(ctx))
	}); err != nil {
		logger.Warn("db ping failed", "err", err)
		os.Exit(1)
	}
	logger.Info("db connected")

	if cfg.MIGRATE {
		if err := migrate.Up(cfg.DB_STRING); err != nil {
			logger.Warn("migrations failed", "err", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	// Redis stock store
	rdb := redis.NewClient(&redis.Options{Addr: cfg.REDIS_ADDR})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed", "err", err)
		os.Exit(1)
	}
	stock := inventory.NewRedisStore(rdb)

	// Notifier: Kafka when brokers are configured, noop otherwise
	var notifier notification.Notifier = noop.Notifier{}
	if cfg.KAFKA_BROKERS != "" {
		kn := notification.NewKafkaNotifier(cfg.KAFKA_BROKERS, cfg.KAFKA_TOPIC)
		defer kn.Close()
		notifier = kn
	}

	// Wiring
	repo := repository.NewOrderRepository(pool)
	svc := application.NewOrderService(repo, stock, notifier, application.UUIDGenerator)

	// Kafka intake (async order requests)
	if cfg.KAFKA_BROKERS != "" && cfg.KAFKA_ORDERS_TOPIC != "" {
		_, _ = kafka.StartConsumer(ctx, svc, kafka.ConsumerConfig{
			Brokers: cfg.KAFKA_BROKERS,
			Topic:   cfg.KAFKA_ORDERS_TOPIC,
			GroupID: cfg.KAFKA_GROUP_ID,
		})
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API
	h := presentation.NewOrdersHandler(svc)
	h.Register(r)

	addr := ":" + cfg.HTTP_PORT
	logger.Info("starting http", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Warn("http server crashed", "err", err)
		os.Exit(1)
	}
}
