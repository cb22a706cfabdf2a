package repository

import (
	"context"
	"strconv"

	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/models"
	"github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/internal/domain/repository"
	pkgkafka "github.com/jamesayo4567/Decentralized-Retail-Inventory-Forecasting/pkg/kafka"
)

// KafkaEventPublisher writes contract events to a Kafka topic keyed by product.
type KafkaEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a Kafka-backed event publisher.
func NewKafkaEventPublisher(producer *pkgkafka.Producer, topic string) repository.EventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishEvent(ctx context.Context, ev models.ContractEvent) error {
	// same product -> same partition, so per-product event order is kept
	key := []byte(strconv.FormatUint(ev.ProductID, 10))
	return p.producer.Publish(ctx, p.topic, key, ev)
}

func (p *KafkaEventPublisher) Close() error {
	return p.producer.Close()
}

// NopEventPublisher drops events. Used when Kafka is disabled.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishEvent(context.Context, models.ContractEvent) error { return nil }
func (NopEventPublisher) Close() error                                             { return nil }
