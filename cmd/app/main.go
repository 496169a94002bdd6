package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skopintsev/farebook/config"
	"github.com/skopintsev/farebook/internal/bootstrap"
	"github.com/skopintsev/farebook/internal/cache"
	"github.com/skopintsev/farebook/internal/kafka"
	"github.com/skopintsev/farebook/internal/logging"
	"github.com/skopintsev/farebook/internal/repository"
	"github.com/skopintsev/farebook/internal/service/booking"
	"github.com/skopintsev/farebook/internal/service/flights"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(os.Getenv("APP_ENV") != "production")
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.QuotesCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool, repository.Capabilities{
		Passengers: cfg.Database.PersistPassengers,
		Receipts:   cfg.Database.PersistReceipts,
	})

	flightService := flights.NewFlightService(flightRepo, redisCache, logger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Booking.LockTTL(),
		cfg.Booking.LockWait(),
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithReferenceAttempts(cfg.Booking.ReferenceAttempts),
	)

	if err := bootstrap.Run(ctx, cfg, flightService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
