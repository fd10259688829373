package di

import (
	"context"
	"fmt"
	"time"

	"EquityPulse/internal/domain/repository"
	"EquityPulse/internal/export"
	"EquityPulse/internal/handler/api"
	"EquityPulse/internal/handler/ws"
	internalrepo "EquityPulse/internal/repository"
	"EquityPulse/internal/services/engine"
	"EquityPulse/internal/usecase"
	"EquityPulse/pkg/cache"
	pkgch "EquityPulse/pkg/clickhouse"
	"EquityPulse/pkg/config"
	xhttp "EquityPulse/pkg/http"
	pkgkafka "EquityPulse/pkg/kafka"
	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/metrics"
	"EquityPulse/pkg/server"
)

// Analyzer bundles what the command line tool needs.
type Analyzer struct {
	Service  *usecase.AnalysisService
	Provider repository.MarketDataProvider
	Exporter *export.Exporter
	Logger   *applogger.Logger
}

func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

func ProvideCache(cfg *config.Config) (cache.Service, func(), error) {
	c, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("cache: %w", err)
	}
	return c, func() { _ = c.Close() }, nil
}

// ProvideClickHouseClient creates a ClickHouse client and its schema. It
// returns nil when no host is configured.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if cfg.ClickHouse.Host == "" {
		l.Info("clickhouse disabled, bars and reports are not persisted")
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(cfg.ClickHouse.Options()...)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	client.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema(client.Database())); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse connected", applogger.String("database", client.Database()))
	return client, func() { _ = client.Close() }, nil
}

// ProvideMarketData builds the provider chain: remote API, then ClickHouse
// in front of it when available, then the series cache.
func ProvideMarketData(cfg *config.Config, ch *pkgch.Client, c cache.Service, m repository.Metrics, l *applogger.Logger) repository.MarketDataProvider {
	p := cfg.Provider
	remote := internalrepo.NewHTTPMarketData(p.BaseURL, xhttp.NewClient(
		xhttp.WithTimeout(p.Timeout),
		xhttp.WithRetry(p.Retries, p.RetryBackoff),
		xhttp.WithUserAgent(p.UserAgent),
	))
	remote.SetLogger(l)

	var chain repository.MarketDataProvider = remote
	if ch != nil {
		store := internalrepo.NewCHMarketData(ch)
		store.SetLogger(l)
		fb := internalrepo.NewFallbackMarketData(store, remote, p.Backfill, m)
		fb.SetLogger(l)
		chain = fb
	}

	cached := internalrepo.NewCachedMarketData(chain, c, cfg.Cache.SeriesTTL, m)
	cached.SetLogger(l)
	return cached
}

func ProvideEngine(cfg *config.Config) (*engine.Engine, error) {
	return engine.New(cfg.Engine)
}

// ProvideKafkaProducer creates a Kafka producer, or nil with Kafka disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(cfg.Kafka.ProducerOptions()...)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() { _ = producer.Close() }, nil
}

// ProvideKafkaConsumer creates the analysis request consumer, or nil with
// Kafka disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(cfg.Kafka.ConsumerOptions()...)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetLogger(l)
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), pkgkafka.LoggingHook(l)))
	return consumer, nil
}

func ProvideReportPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.ReportPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Topics.Reports)
}

func ProvideRequestPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.RequestPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaRequestPublisher(producer, cfg.Kafka.Topics.Requests)
}

func ProvideReportStore(ch *pkgch.Client, l *applogger.Logger) repository.ReportStore {
	if ch == nil {
		return nil
	}
	s := internalrepo.NewCHReportStore(ch)
	s.SetLogger(l)
	return s
}

func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

func ProvideAnalysisService(
	cfg *config.Config,
	provider repository.MarketDataProvider,
	eng *engine.Engine,
	m repository.Metrics,
	pub repository.ReportPublisher,
	store repository.ReportStore,
	hub *ws.Hub,
	l *applogger.Logger,
) *usecase.AnalysisService {
	opts := []usecase.AnalysisOption{
		usecase.WithLogger(l),
		usecase.WithTimeout(cfg.Provider.AnalysisTimeout),
		usecase.WithLookback(cfg.Provider.LookbackDays),
		usecase.WithConcurrency(cfg.Watchlist.Concurrency),
	}
	if pub != nil {
		opts = append(opts, usecase.WithPublisher(pub))
	}
	if store != nil {
		opts = append(opts, usecase.WithReportStore(store))
	}
	if hub != nil {
		opts = append(opts, usecase.WithBroadcaster(hub))
	}
	return usecase.NewAnalysisService(provider, eng, m, opts...)
}

func ProvideAnalysisRequestHandler(cfg *config.Config, svc *usecase.AnalysisService, m repository.Metrics) pkgkafka.MessageHandler {
	return usecase.NewAnalysisRequestHandler(cfg.Kafka.Topics.Requests, svc, m)
}

// ProvideWatchlist returns nil unless the scheduled run is enabled.
func ProvideWatchlist(cfg *config.Config, svc *usecase.AnalysisService, l *applogger.Logger) *usecase.Watchlist {
	w := cfg.Watchlist
	if !w.Enabled {
		return nil
	}
	return usecase.NewWatchlist(svc, w.Tickers, w.Benchmark, w.Interval, l)
}

func ProvideAnalysisHandler(l *applogger.Logger, svc *usecase.AnalysisService, requests repository.RequestPublisher) *api.AnalysisHandler {
	return api.NewAnalysisHandler(l, svc, requests)
}

func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.AnalysisHandler, hub *ws.Hub) *xhttp.Server {
	opts := append(cfg.Server.Options(), xhttp.WithLogger(l))
	return xhttp.NewServer(xhttp.Handlers{h, hub}, opts...)
}

func ProvideExporter(cfg *config.Config, l *applogger.Logger) *export.Exporter {
	return export.New(cfg.Export.Dir, cfg.Engine.Indicators, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	producer *pkgkafka.Producer,
	watchlist *usecase.Watchlist,
	hub *ws.Hub,
) *server.App {
	return server.New(cfg, l, srv, server.Deps{
		Consumer:  consumer,
		Handler:   kh,
		Producer:  producer,
		Watchlist: watchlist,
		Hub:       hub,
	})
}

// ProvideNoPublisher and ProvideNoHub disable delivery for the command line.
func ProvideNoPublisher() repository.ReportPublisher { return nil }

func ProvideNoHub() *ws.Hub { return nil }

func ProvideAnalyzer(svc *usecase.AnalysisService, provider repository.MarketDataProvider, x *export.Exporter, l *applogger.Logger) *Analyzer {
	return &Analyzer{Service: svc, Provider: provider, Exporter: x, Logger: l}
}
