package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"sarpras/internal/notifier"
	"sarpras/pkg/config"
	"sarpras/pkg/kafka"
	kafka_config "sarpras/pkg/kafka/config"
	kafka_middleware "sarpras/pkg/kafka/middleware"

	"github.com/joho/godotenv"
)

const ServiceName = "notifier"

func main() {
	envErr := godotenv.Load()
	cfg := config.Load(ServiceName)
	if envErr != nil {
		cfg.Log.Debug("No .env file loaded", "error", envErr)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	handler := notifier.NewHandler(cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.ReservationEventsTopic,
		cfg.NotifierGroupID,
		cfg.ReservationEventsDLQTopic,
		handler.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create reservation event consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.ReservationEventsTopic, "group_id", cfg.NotifierGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Notifier consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped")
}
