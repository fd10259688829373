package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityPulse/internal/domain/models"
	pkgkafka "EquityPulse/pkg/kafka"
	"EquityPulse/pkg/metrics"
)

func TestAnalyzeDeliversReport(t *testing.T) {
	p, sink := newFakeProvider(), &fakeSink{}
	svc := newTestService(p, sink)

	env, err := svc.Analyze(context.Background(), AnalyzeParams{
		RequestID: "req-1",
		Ticker:    " ry.to ",
		Start:     "2024-01-02",
		Benchmark: "^gsptse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "req-1", env.RequestID)
	assert.Equal(t, "RY.TO", env.Ticker)
	assert.Equal(t, "RY.TO", env.Report.Metadata.Ticker)
	assert.Equal(t, "Financial Services", env.Report.Metadata.Sector)
	assert.Equal(t, testNow, env.Report.Metadata.AnalysisDate)
	require.NotNil(t, env.Report.RelativePerformance)
	assert.Equal(t, "^GSPTSE", env.Report.RelativePerformance.Benchmark)

	require.Len(t, sink.published, 1)
	require.Len(t, sink.saved, 1)
	require.Len(t, sink.broadcast, 1)
	assert.Same(t, env, sink.published[0])
}

func TestAnalyzeIsDeterministicAcrossCalls(t *testing.T) {
	svc := newTestService(newFakeProvider(), nil)
	a, err := svc.Analyze(context.Background(), AnalyzeParams{Ticker: "TD.TO"})
	require.NoError(t, err)
	b, err := svc.Analyze(context.Background(), AnalyzeParams{Ticker: "TD.TO"})
	require.NoError(t, err)

	ja, err := json.Marshal(a.Report)
	require.NoError(t, err)
	jb, err := json.Marshal(b.Report)
	require.NoError(t, err)
	assert.JSONEq(t, string(ja), string(jb))
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		params AnalyzeParams
		want   error
	}{
		{"missing ticker", AnalyzeParams{Ticker: "  "}, models.ErrInput},
		{"bad date", AnalyzeParams{Ticker: "RY.TO", Start: "2024/01/02"}, models.ErrInput},
		{"inverted range", AnalyzeParams{Ticker: "RY.TO", Start: "2024-06-01", End: "2024-01-01"}, models.ErrInput},
		{"inconsistent overrides", AnalyzeParams{Ticker: "RY.TO", Overrides: models.Overrides{MAShort: 60}}, models.ErrConfiguration},
		{"unknown ticker", AnalyzeParams{Ticker: "NOPE.TO"}, models.ErrNotAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			_, err := newTestService(newFakeProvider(), sink).Analyze(context.Background(), tt.params)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsClientError(err))
			assert.Empty(t, sink.published)
		})
	}
}

func TestAnalyzeAppliesOverrides(t *testing.T) {
	svc := newTestService(newFakeProvider(), nil)
	base, err := svc.Analyze(context.Background(), AnalyzeParams{Ticker: "RY.TO"})
	require.NoError(t, err)
	tuned, err := svc.Analyze(context.Background(), AnalyzeParams{
		Ticker:    "RY.TO",
		Overrides: models.Overrides{VaRConfidence: 0.99},
	})
	require.NoError(t, err)

	require.NotNil(t, base.Report.MarketMetrics.ValueAtRisk)
	require.NotNil(t, tuned.Report.MarketMetrics.ValueAtRisk)
	assert.Greater(t, *tuned.Report.MarketMetrics.ValueAtRisk, *base.Report.MarketMetrics.ValueAtRisk)
}

func TestAnalyzeWithoutBenchmarkData(t *testing.T) {
	p := newFakeProvider()
	p.errs["^GSPTSE"] = errors.New("upstream timeout")
	env, err := newTestService(p, nil).Analyze(context.Background(), AnalyzeParams{Ticker: "RY.TO", Benchmark: "^GSPTSE"})
	require.NoError(t, err)
	assert.Nil(t, env.Report.RelativePerformance)
}

func TestAnalyzeSurvivesPublishFailure(t *testing.T) {
	sink := &fakeSink{pubErr: errors.New("broker down")}
	env, err := newTestService(newFakeProvider(), sink).Analyze(context.Background(), AnalyzeParams{Ticker: "RY.TO"})
	require.NoError(t, err)
	assert.NotNil(t, env)
	assert.Len(t, sink.saved, 1)
}

func TestAnalyzeBatch(t *testing.T) {
	p := newFakeProvider()
	svc := newTestService(p, &fakeSink{})

	items, err := svc.AnalyzeBatch(context.Background(), []string{"ry.to", "NOPE.TO", "RY.TO", "td.to"}, "", "", "^GSPTSE")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "RY.TO", items[0].Ticker)
	require.NotNil(t, items[0].Result)
	assert.NotNil(t, items[0].Result.Report.RelativePerformance)

	assert.Equal(t, "NOPE.TO", items[1].Ticker)
	assert.Nil(t, items[1].Result)
	assert.Contains(t, items[1].Error, "not available")

	assert.Equal(t, "TD.TO", items[2].Ticker)
	assert.NotNil(t, items[2].Result)
	assert.Equal(t, 1, p.calls["^GSPTSE"], "benchmark fetched once per batch")

	_, err = svc.AnalyzeBatch(context.Background(), nil, "", "", "")
	assert.ErrorIs(t, err, models.ErrInput)
}

func TestListReports(t *testing.T) {
	_, err := newTestService(newFakeProvider(), nil).ListReports(context.Background(), "RY.TO", 5)
	assert.ErrorIs(t, err, ErrStoreDisabled)

	sink := &fakeSink{stored: []models.StoredReport{{ID: "a", Ticker: "RY.TO"}, {ID: "b", Ticker: "TD.TO"}}}
	got, err := newTestService(newFakeProvider(), sink).ListReports(context.Background(), "ry.to", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestAnalysisRequestHandler(t *testing.T) {
	p, sink := newFakeProvider(), &fakeSink{}
	h := NewAnalysisRequestHandler("equity.analysis.requests", newTestService(p, sink), metrics.Nop{})
	assert.Equal(t, "equity.analysis.requests", h.Topic())
	ctx := context.Background()

	err := h.Handle(ctx, []byte(`{not json`))
	assert.ErrorIs(t, err, pkgkafka.ErrNonRetryable)

	err = h.Handle(ctx, []byte(`{"start":"2024-01-02"}`))
	assert.ErrorIs(t, err, pkgkafka.ErrNonRetryable, "ticker is required")

	err = h.Handle(ctx, []byte(`{"ticker":"NOPE.TO","start":"2024-01-02"}`))
	assert.ErrorIs(t, err, pkgkafka.ErrNonRetryable)
	assert.ErrorIs(t, err, models.ErrNotAvailable)

	p.errs["TD.TO"] = errors.New("connection reset")
	err = h.Handle(ctx, []byte(`{"ticker":"TD.TO","start":"2024-01-02"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, pkgkafka.ErrNonRetryable)

	traced := pkgkafka.WithTraceID(ctx, "trace-7")
	require.NoError(t, h.Handle(traced, []byte(`{"ticker":"RY.TO","start":"2024-01-02"}`)))
	require.Len(t, sink.published, 1)
	assert.Equal(t, "trace-7", sink.published[0].RequestID)

	require.NoError(t, h.Handle(ctx, []byte(`{"request_id":"r-42","ticker":"RY.TO","start":"2024-01-02"}`)))
	assert.Equal(t, "r-42", sink.published[1].RequestID)
}

func TestWatchlistRunOnce(t *testing.T) {
	sink := &fakeSink{}
	w := NewWatchlist(newTestService(newFakeProvider(), sink), []string{"RY.TO", "TD.TO", "NOPE.TO"}, "", time.Hour, nil)
	assert.Equal(t, 2, w.RunOnce(context.Background()))
	assert.Len(t, sink.broadcast, 2)
}

func TestWatchlistRunStopsOnCancel(t *testing.T) {
	w := NewWatchlist(newTestService(newFakeProvider(), nil), []string{"RY.TO"}, "", time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Run(ctx), context.Canceled)
}
