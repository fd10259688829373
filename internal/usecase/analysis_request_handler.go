package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	pkgkafka "EquityPulse/pkg/kafka"
)

var validate = validator.New()

// AnalysisRequestHandler consumes analysis requests from Kafka. The report is
// delivered through the service's publisher like any other analysis.
type AnalysisRequestHandler struct {
	topic   string
	svc     *AnalysisService
	metrics domrepo.Metrics
}

func NewAnalysisRequestHandler(topic string, svc *AnalysisService, metrics domrepo.Metrics) *AnalysisRequestHandler {
	return &AnalysisRequestHandler{topic: topic, svc: svc, metrics: metrics}
}

func (h *AnalysisRequestHandler) Topic() string { return h.topic }

// Handle returns a non-retryable error for requests that can never succeed,
// so they go straight to the DLQ.
func (h *AnalysisRequestHandler) Handle(ctx context.Context, b []byte) error {
	var m models.AnalysisRequestMessage
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("%w: decode request: %v", pkgkafka.ErrNonRetryable, err)
	}
	if err := validate.Struct(&m); err != nil {
		h.metrics.RecordError("consumer_validate")
		return fmt.Errorf("%w: invalid request: %v", pkgkafka.ErrNonRetryable, err)
	}
	if m.RequestID == "" {
		m.RequestID = pkgkafka.TraceIDFromContext(ctx)
	}
	if m.RequestID == "" {
		m.RequestID = uuid.NewString()
	}

	start := time.Now()
	_, err := h.svc.Analyze(ctx, AnalyzeParams{
		RequestID: m.RequestID,
		Ticker:    m.Ticker,
		Start:     m.Start,
		End:       m.End,
		Benchmark: m.Benchmark,
	})
	h.metrics.RecordLatency("consumer_analysis_seconds", time.Since(start).Seconds())
	if err != nil {
		if IsClientError(err) {
			return fmt.Errorf("%w: %w", pkgkafka.ErrNonRetryable, err)
		}
		return err
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*AnalysisRequestHandler)(nil)
