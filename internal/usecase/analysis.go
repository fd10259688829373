package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"EquityPulse/internal/catalog"
	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	"EquityPulse/internal/services/engine"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/util"
)

// ErrStoreDisabled is returned by report listing when no archive is wired.
var ErrStoreDisabled = errors.New("report store is not configured")

// AnalysisService fetches market data, runs the engine and delivers the
// report to the configured sinks.
type AnalysisService struct {
	provider    domrepo.MarketDataProvider
	engine      *engine.Engine
	publisher   domrepo.ReportPublisher
	store       domrepo.ReportStore
	broadcaster domrepo.ReportBroadcaster
	metrics     domrepo.Metrics
	l           *applogger.Logger

	timeout     time.Duration
	lookback    int
	concurrency int
	now         func() time.Time
}

type AnalysisOption func(*AnalysisService)

func WithPublisher(p domrepo.ReportPublisher) AnalysisOption {
	return func(s *AnalysisService) { s.publisher = p }
}

func WithReportStore(st domrepo.ReportStore) AnalysisOption {
	return func(s *AnalysisService) { s.store = st }
}

func WithBroadcaster(b domrepo.ReportBroadcaster) AnalysisOption {
	return func(s *AnalysisService) { s.broadcaster = b }
}

func WithLogger(l *applogger.Logger) AnalysisOption {
	return func(s *AnalysisService) { s.l = l }
}

// WithTimeout bounds data retrieval plus analysis of one ticker.
func WithTimeout(d time.Duration) AnalysisOption {
	return func(s *AnalysisService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLookback sets the range used when a request has no start date.
func WithLookback(days int) AnalysisOption {
	return func(s *AnalysisService) {
		if days > 0 {
			s.lookback = days
		}
	}
}

// WithConcurrency caps parallel tickers in a batch.
func WithConcurrency(n int) AnalysisOption {
	return func(s *AnalysisService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) AnalysisOption {
	return func(s *AnalysisService) { s.now = now }
}

func NewAnalysisService(provider domrepo.MarketDataProvider, eng *engine.Engine, metrics domrepo.Metrics, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		provider:    provider,
		engine:      eng,
		metrics:     metrics,
		l:           applogger.Nop(),
		timeout:     30 * time.Second,
		lookback:    365,
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type AnalyzeParams struct {
	RequestID string
	Ticker    string
	Start     string
	End       string
	Benchmark string
	NoCache   bool
	Overrides models.Overrides
}

// request is a validated AnalyzeParams.
type request struct {
	id        string
	ticker    string
	benchmark string
	from, to  time.Time
	engine    *engine.Engine
	noCache   bool
}

// Analyze runs one analysis end to end. Delivery failures are logged but do
// not fail the call once the report exists.
func (s *AnalysisService) Analyze(ctx context.Context, p AnalyzeParams) (*models.ReportEnvelope, error) {
	req, err := s.prepare(p)
	if err != nil {
		s.metrics.RecordAnalysis(catalog.Normalize(p.Ticker), outcome(err))
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if req.noCache {
		ctx = domrepo.WithoutCache(ctx)
	}

	var (
		series models.OHLCVSeries
		bench  *models.OHLCVSeries
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		series, err = s.provider.Fetch(gctx, req.ticker, req.from, req.to)
		return err
	})
	if req.benchmark != "" {
		g.Go(func() error {
			bench = s.fetchBenchmark(gctx, req.benchmark, req.from, req.to)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.fail(req.ticker, "fetch", err)
		return nil, fmt.Errorf("fetch %s: %w", req.ticker, err)
	}
	return s.run(ctx, req, series, bench)
}

// AnalyzeBatch analyzes tickers in parallel over one shared range and
// benchmark. Per-ticker failures are reported in the result, in input order.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, tickers []string, start, end, benchmark string) ([]models.BatchItem, error) {
	tickers = util.Symbols(tickers...)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers", models.ErrInput)
	}
	from, to, err := util.DateRange(start, end, s.now(), s.lookback)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInput, err)
	}

	var bench *models.OHLCVSeries
	if benchmark = catalog.Normalize(benchmark); benchmark != "" {
		bctx, cancel := context.WithTimeout(ctx, s.timeout)
		bench = s.fetchBenchmark(bctx, benchmark, from, to)
		cancel()
	}

	out := make([]models.BatchItem, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			out[i] = models.BatchItem{Ticker: ticker}
			env, err := s.analyzeWith(gctx, ticker, from, to, benchmark, bench)
			if err != nil {
				out[i].Error = err.Error()
				return nil
			}
			out[i].Result = env
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// ListReports returns archived reports for ticker, newest first.
func (s *AnalysisService) ListReports(ctx context.Context, ticker string, limit int) ([]models.StoredReport, error) {
	if s.store == nil {
		return nil, ErrStoreDisabled
	}
	return s.store.ListByTicker(ctx, catalog.Normalize(ticker), limit)
}

func (s *AnalysisService) analyzeWith(ctx context.Context, ticker string, from, to time.Time, benchmark string, bench *models.OHLCVSeries) (*models.ReportEnvelope, error) {
	req := request{ticker: ticker, from: from, to: to, engine: s.engine}
	if bench != nil && benchmark != ticker {
		req.benchmark = benchmark
	} else {
		bench = nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	series, err := s.provider.Fetch(ctx, ticker, from, to)
	if err != nil {
		s.fail(ticker, "fetch", err)
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	return s.run(ctx, req, series, bench)
}

func (s *AnalysisService) prepare(p AnalyzeParams) (request, error) {
	ticker := catalog.Normalize(p.Ticker)
	if ticker == "" {
		return request{}, fmt.Errorf("%w: ticker is required", models.ErrInput)
	}
	from, to, err := util.DateRange(p.Start, p.End, s.now(), s.lookback)
	if err != nil {
		return request{}, fmt.Errorf("%w: %v", models.ErrInput, err)
	}
	eng := s.engine
	if p.Overrides != (models.Overrides{}) {
		if eng, err = engine.New(s.engine.Config().WithOverrides(p.Overrides)); err != nil {
			return request{}, err
		}
	}
	req := request{id: p.RequestID, ticker: ticker, from: from, to: to, engine: eng, noCache: p.NoCache}
	if b := catalog.Normalize(p.Benchmark); b != "" && b != ticker {
		req.benchmark = b
	}
	return req, nil
}

// fetchBenchmark never fails the analysis: without a benchmark the report
// simply has no relative performance block.
func (s *AnalysisService) fetchBenchmark(ctx context.Context, symbol string, from, to time.Time) *models.OHLCVSeries {
	b, err := s.provider.Fetch(ctx, symbol, from, to)
	if err != nil {
		s.metrics.RecordError("benchmark_fetch")
		s.l.Warn("benchmark unavailable",
			applogger.String("benchmark", symbol),
			applogger.Error(err),
		)
		return nil
	}
	b.Ticker = symbol
	return &b
}

func (s *AnalysisService) run(ctx context.Context, req request, series models.OHLCVSeries, bench *models.OHLCVSeries) (*models.ReportEnvelope, error) {
	start := time.Now()
	series.Ticker = req.ticker
	report, err := req.engine.Analyze(engine.Input{
		Series:       series,
		Benchmark:    bench,
		Sector:       catalog.Sector(req.ticker),
		AnalysisDate: s.now().UTC(),
	})
	s.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	if err != nil {
		s.fail(req.ticker, "analyze", err)
		return nil, err
	}

	env := &models.ReportEnvelope{
		ID:        uuid.NewString(),
		RequestID: req.id,
		Ticker:    req.ticker,
		Report:    report,
	}
	s.deliver(ctx, env)

	flags := report.AttentionFlags
	s.metrics.RecordAnalysis(req.ticker, "ok")
	s.metrics.RecordRiskLevel(req.ticker, flags.RiskLevel)
	s.l.Info("analysis complete",
		applogger.String("ticker", req.ticker),
		applogger.String("request_id", req.id),
		applogger.Int("bars", series.Len()),
		applogger.String("risk_level", flags.RiskLevel.String()),
		applogger.Strings("reasons", flags.TriggeredReasons),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return env, nil
}

func (s *AnalysisService) deliver(ctx context.Context, env *models.ReportEnvelope) {
	ctx = context.WithoutCancel(ctx)
	if s.store != nil {
		if err := s.store.Save(ctx, env, s.now()); err != nil {
			s.metrics.RecordError("report_store")
			s.l.Error("report archive failed", applogger.String("ticker", env.Ticker), applogger.Error(err))
		}
	}
	if s.publisher != nil {
		start := time.Now()
		if err := s.publisher.Publish(ctx, env); err != nil {
			s.metrics.RecordError("report_publish")
			s.l.Error("report publish failed", applogger.String("ticker", env.Ticker), applogger.Error(err))
		}
		s.metrics.RecordLatency("publish", time.Since(start).Seconds())
	}
	if s.broadcaster != nil {
		s.broadcaster.Broadcast(env)
	}
}

func (s *AnalysisService) fail(ticker, stage string, err error) {
	kind := outcome(err)
	s.metrics.RecordAnalysis(ticker, kind)
	if kind == "error" {
		s.metrics.RecordError(stage)
		s.l.Error("analysis failed",
			applogger.String("ticker", ticker),
			applogger.String("stage", stage),
			applogger.Error(err),
		)
		return
	}
	s.l.Debug("analysis rejected",
		applogger.String("ticker", ticker),
		applogger.String("stage", stage),
		applogger.String("reason", kind),
		applogger.Error(err),
	)
}

// outcome classifies err for metrics and HTTP mapping.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrInput):
		return "input"
	case errors.Is(err, models.ErrConfiguration):
		return "configuration"
	case errors.Is(err, models.ErrNotAvailable):
		return "not_available"
	default:
		return "error"
	}
}

// IsClientError reports whether err is caused by the request rather than by
// the service.
func IsClientError(err error) bool {
	switch outcome(err) {
	case "input", "configuration", "not_available":
		return true
	}
	return false
}
