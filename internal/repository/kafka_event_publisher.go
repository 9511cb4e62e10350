package repository

import (
	"context"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgkafka "StockCast/pkg/kafka"
)

// publisher is satisfied by *pkgkafka.Producer.
type publisher interface {
	Publish(ctx context.Context, topic string, key []byte, value any) error
	Close() error
}

// KafkaEventPublisher emits run events keyed by symbol, so one symbol's runs
// stay ordered within a partition.
type KafkaEventPublisher struct {
	p     publisher
	topic string
}

var _ domrepo.EventPublisher = (*KafkaEventPublisher)(nil)

func NewKafkaEventPublisher(p *pkgkafka.Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{p: p, topic: topic}
}

func (k *KafkaEventPublisher) PublishRun(ctx context.Context, ev *models.RunEvent) error {
	return k.p.Publish(ctx, k.topic, []byte(ev.Symbol), ev)
}

func (k *KafkaEventPublisher) Close() error { return k.p.Close() }

// NopEventPublisher drops events. Used when Kafka is disabled.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishRun(context.Context, *models.RunEvent) error { return nil }
func (NopEventPublisher) Close() error                                       { return nil }
