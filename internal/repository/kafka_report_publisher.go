package repository

import (
	"context"
	"strconv"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	pkgkafka "EquityPulse/pkg/kafka"
)

// Headers attached to every published report.
const (
	HeaderRequestID = "request_id"
	HeaderRiskLevel = "risk_level"
	HeaderAttention = "requires_attention"
)

// KafkaReportPublisher implements ReportPublisher for Kafka. Reports are keyed
// by ticker so one instrument's reports stay ordered within a partition.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaReportPublisher creates Kafka publisher.
func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) Publish(ctx context.Context, env *models.ReportEnvelope) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{reportMessage(env)})
}

func reportMessage(env *models.ReportEnvelope) pkgkafka.Message {
	headers := map[string]string{}
	if env.RequestID != "" {
		headers[HeaderRequestID] = env.RequestID
	}
	if env.Report != nil {
		headers[HeaderRiskLevel] = env.Report.AttentionFlags.RiskLevel.String()
		headers[HeaderAttention] = strconv.FormatBool(env.Report.AttentionFlags.RequiresAttention)
	}
	return pkgkafka.Message{Key: []byte(env.Ticker), Value: env, Headers: headers}
}

// Close closes the underlying producer.
func (p *KafkaReportPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)
