// Package events publishes reservation lifecycle changes.
package events

import (
	"context"
	"fmt"
	"time"

	"sarpras/pkg/kafka"
	kafka_config "sarpras/pkg/kafka/config"
	kafka_middleware "sarpras/pkg/kafka/middleware"
	"sarpras/pkg/logger"
	"sarpras/pkg/model"
)

const (
	Source        = "reservations"
	SchemaVersion = "1"
)

type Publisher interface {
	Publish(ctx context.Context, eventType string, reservation *model.Reservation) error
	Close() error
}

// sender is the subset of *kafka.Producer the publisher needs.
type sender interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer sender
	now      func() time.Time
}

func NewKafkaPublisher(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation event producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(log))

	return &kafkaPublisher{
		producer: producer,
		now:      time.Now,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, reservation *model.Reservation) error {
	msg, err := BuildMessage(model.NewReservationEvent(eventType, reservation, p.now().UTC()))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// BuildMessage keys the record by asset code so every event for one asset
// lands on the same partition in order.
func BuildMessage(event model.ReservationEvent) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.AssetCode).
		WithValue(event).
		WithEventType(event.Type).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(event.ReservationID).
		WithTimestamp(event.OccurredAt).
		Build()
}

type noopPublisher struct{}

// NewNoopPublisher is used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.Reservation) error { return nil }

func (noopPublisher) Close() error { return nil }
