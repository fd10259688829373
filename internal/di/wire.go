//go:build wireinject
// +build wireinject

package di

import (
	"EquityPulse/pkg/config"
	"EquityPulse/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideCache,
	ProvideClickHouseClient,
	ProvideMarketData,
	ProvideEngine,
	ProvideReportStore,
)

// InitializeApp wires up all dependencies and returns the application.
// The cleanup closes infrastructure clients in reverse order.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,

		// Messaging
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideReportPublisher,
		ProvideRequestPublisher,

		// Use cases
		ProvideHub,
		ProvideAnalysisService,
		ProvideAnalysisRequestHandler,
		ProvideWatchlist,

		// Transport
		ProvideAnalysisHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAnalyzer wires the command line analyzer. Reports are archived
// when ClickHouse is configured but never published.
func InitializeAnalyzer(cfg *config.Config) (*Analyzer, func(), error) {
	wire.Build(
		infraSet,
		ProvideNoPublisher,
		ProvideNoHub,
		ProvideAnalysisService,
		ProvideExporter,
		ProvideAnalyzer,
	)
	return nil, nil, nil
}
