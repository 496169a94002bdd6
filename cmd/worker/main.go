package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/skopintsev/farebook/config"
	"github.com/skopintsev/farebook/internal/kafka"
	"github.com/skopintsev/farebook/internal/logging"
	"github.com/skopintsev/farebook/internal/notify"
	"github.com/skopintsev/farebook/internal/repository"
	"github.com/skopintsev/farebook/internal/simulation"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)

	// Demand simulation goes through the same seat ledger as real bookings.
	simulator := simulation.NewSimulator(
		flightRepo,
		flightRepo,
		producer,
		cfg.Kafka.BookingTopic,
		cfg.Worker.SimulationMaxSeats,
		logger,
	)
	go simulator.Run(ctx, time.Duration(cfg.Worker.SimulationIntervalSeconds)*time.Second)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer consumer.Close()

	sender := notify.NewSender(logger)

	go func() {
		if err := consumer.Consume(ctx, sender.Send); err != nil {
			logger.Info("consumer stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down worker")
}
