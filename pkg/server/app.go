package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"EquityPulse/internal/handler/ws"
	"EquityPulse/internal/usecase"
	"EquityPulse/pkg/config"
	xhttp "EquityPulse/pkg/http"
	pkgkafka "EquityPulse/pkg/kafka"
	applogger "EquityPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	producer   *pkgkafka.Producer
	watchlist  *usecase.Watchlist
	hub        *ws.Hub
}

// Deps groups the optional components of the App. Nil members are not
// started. Clients are closed by the cleanup returned from the injector.
type Deps struct {
	Consumer  *pkgkafka.Consumer
	Handler   pkgkafka.MessageHandler
	Producer  *pkgkafka.Producer
	Watchlist *usecase.Watchlist
	Hub       *ws.Hub
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, d Deps) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: srv,
		consumer:   d.Consumer,
		kh:         d.Handler,
		producer:   d.Producer,
		watchlist:  d.Watchlist,
		hub:        d.Hub,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done.
func (a *App) RunContext(ctx context.Context) error {
	if a.cfg.LogShipping.Enabled && a.producer != nil {
		a.l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   a.cfg.LogShipping.Interval,
			CountThreshold: a.cfg.LogShipping.CountThreshold,
			Topic:          a.cfg.Kafka.Topics.Logs,
			Publisher:      a.producer,
			Service:        "equitypulse",
			Environment:    a.cfg.Environment,
		})
		a.l.Info("log shipping enabled", applogger.String("topic", a.cfg.Kafka.Topics.Logs))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	if a.watchlist != nil {
		go func() {
			defer close(done)
			if err := a.watchlist.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.l.Error("watchlist stopped", applogger.Error(err))
			}
		}()
		a.l.Info("watchlist started",
			applogger.Strings("tickers", a.cfg.Watchlist.Tickers),
			applogger.Duration("interval", a.cfg.Watchlist.Interval),
		)
	} else {
		close(done)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	cancel()
	<-done
	return a.shutdown()
}

// shutdown stops the HTTP server before the consumer and the log collector.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	// Pending aggregated logs go out through the producer, which is still open.
	a.l.RemoveCollector()

	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}
