package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/engine"
	"EquityPulse/internal/services/seriestest"
	"EquityPulse/pkg/metrics"
)

var testNow = time.Date(2024, 12, 31, 22, 0, 0, 0, time.UTC)

type fakeProvider struct {
	mu     sync.Mutex
	series map[string]models.OHLCVSeries
	errs   map[string]error
	calls  map[string]int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		series: map[string]models.OHLCVSeries{
			"RY.TO":   seriestest.RandomWalk(300, 0.0005, 0.01, 1),
			"TD.TO":   seriestest.RandomWalk(300, 0.0002, 0.015, 2),
			"^GSPTSE": seriestest.RandomWalk(300, 0.0003, 0.008, 3),
		},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeProvider) Fetch(_ context.Context, ticker string, _, _ time.Time) (models.OHLCVSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ticker]++
	if err := f.errs[ticker]; err != nil {
		return models.OHLCVSeries{}, err
	}
	s, ok := f.series[ticker]
	if !ok {
		return models.OHLCVSeries{}, fmt.Errorf("%w: %s", models.ErrNotAvailable, ticker)
	}
	return s, nil
}

type fakeSink struct {
	mu        sync.Mutex
	published []*models.ReportEnvelope
	saved     []*models.ReportEnvelope
	broadcast []*models.ReportEnvelope
	stored    []models.StoredReport
	pubErr    error
}

func (f *fakeSink) Publish(_ context.Context, env *models.ReportEnvelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, env)
	return f.pubErr
}

func (f *fakeSink) Close() error { return nil }

func (f *fakeSink) Save(_ context.Context, env *models.ReportEnvelope, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, env)
	return nil
}

func (f *fakeSink) ListByTicker(_ context.Context, ticker string, limit int) ([]models.StoredReport, error) {
	var out []models.StoredReport
	for _, r := range f.stored {
		if r.Ticker == ticker && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSink) Broadcast(env *models.ReportEnvelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, env)
}

func newTestService(p *fakeProvider, sink *fakeSink) *AnalysisService {
	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		panic(err)
	}
	opts := []AnalysisOption{WithClock(func() time.Time { return testNow }), WithConcurrency(2)}
	if sink != nil {
		opts = append(opts, WithPublisher(sink), WithReportStore(sink), WithBroadcaster(sink))
	}
	return NewAnalysisService(p, eng, metrics.Nop{}, opts...)
}
