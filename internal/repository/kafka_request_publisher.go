package repository

import (
	"context"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	pkgkafka "EquityPulse/pkg/kafka"
)

// KafkaRequestPublisher enqueues analysis requests for the consumer side.
// The request id doubles as the trace id so logs on both sides correlate.
type KafkaRequestPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRequestPublisher(producer *pkgkafka.Producer, topic string) *KafkaRequestPublisher {
	return &KafkaRequestPublisher{producer: producer, topic: topic}
}

func (p *KafkaRequestPublisher) Enqueue(ctx context.Context, msg *models.AnalysisRequestMessage) error {
	if pkgkafka.TraceIDFromContext(ctx) == "" && msg.RequestID != "" {
		ctx = pkgkafka.WithTraceID(ctx, msg.RequestID)
	}
	return p.producer.Publish(ctx, p.topic, []byte(msg.Ticker), msg)
}

var _ domrepo.RequestPublisher = (*KafkaRequestPublisher)(nil)
