package repository

import (
	"context"
	"time"

	"EquityPulse/internal/domain/models"
)

// MarketDataProvider returns the daily bars of ticker within [start, end].
// A ticker or range with no data fails with models.ErrNotAvailable.
type MarketDataProvider interface {
	Fetch(ctx context.Context, ticker string, start, end time.Time) (models.OHLCVSeries, error)
}

// BarStore is a provider that can also persist bars.
type BarStore interface {
	MarketDataProvider
	StoreBars(ctx context.Context, series models.OHLCVSeries) error
}

type ReportPublisher interface {
	Publish(ctx context.Context, env *models.ReportEnvelope) error
	Close() error
}

// RequestPublisher hands analysis requests to the asynchronous pipeline.
type RequestPublisher interface {
	Enqueue(ctx context.Context, msg *models.AnalysisRequestMessage) error
}

// ReportStore archives reports and lists them newest first.
type ReportStore interface {
	Save(ctx context.Context, env *models.ReportEnvelope, createdAt time.Time) error
	ListByTicker(ctx context.Context, ticker string, limit int) ([]models.StoredReport, error)
}

// ReportBroadcaster pushes reports to live subscribers. It must not block.
type ReportBroadcaster interface {
	Broadcast(env *models.ReportEnvelope)
}

type Metrics interface {
	RecordAnalysis(ticker, outcome string)
	RecordRiskLevel(ticker string, level models.Severity)
	RecordCache(source string, hit bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
