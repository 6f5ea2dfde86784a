package repository

import (
	"context"

	"WhaleWhisperer/internal/domain/models"
	domrepo "WhaleWhisperer/internal/domain/repository"
	pkgkafka "WhaleWhisperer/pkg/kafka"
)

// KafkaTradePublisher emits executed trades as events, keyed by user
// so per-user ordering is preserved.
type KafkaTradePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaTradePublisher creates the Kafka trade event publisher.
func NewKafkaTradePublisher(producer *pkgkafka.Producer, topic string) domrepo.TradePublisher {
	return &KafkaTradePublisher{producer: producer, topic: topic}
}

func (p *KafkaTradePublisher) Publish(ctx context.Context, t *models.ExecutedTrade) error {
	return p.producer.Publish(ctx, p.topic, []byte(t.User), t)
}

func (p *KafkaTradePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
