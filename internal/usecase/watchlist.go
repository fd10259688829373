package usecase

import (
	"context"
	"time"

	applogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/util"
)

// Watchlist periodically analyzes a fixed set of tickers. Reports reach
// subscribers through the service's publisher, store and broadcaster.
type Watchlist struct {
	svc       *AnalysisService
	tickers   []string
	benchmark string
	interval  time.Duration
	l         *applogger.Logger
}

func NewWatchlist(svc *AnalysisService, tickers []string, benchmark string, interval time.Duration, l *applogger.Logger) *Watchlist {
	if l == nil {
		l = applogger.Nop()
	}
	return &Watchlist{svc: svc, tickers: util.Symbols(tickers...), benchmark: benchmark, interval: interval, l: l}
}

// Run analyzes immediately, then every interval until ctx is done.
func (w *Watchlist) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		w.RunOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

// RunOnce analyzes every ticker once and returns how many succeeded.
func (w *Watchlist) RunOnce(ctx context.Context) int {
	start := time.Now()
	items, err := w.svc.AnalyzeBatch(ctx, w.tickers, "", "", w.benchmark)
	if err != nil {
		w.l.Warn("watchlist run aborted", applogger.Error(err))
	}
	ok, flagged := 0, 0
	var failed []string
	for _, it := range items {
		if it.Result == nil {
			failed = append(failed, it.Ticker)
			continue
		}
		ok++
		if it.Result.Report.AttentionFlags.RequiresAttention {
			flagged++
		}
	}
	w.l.Info("watchlist run complete",
		applogger.Int("tickers", len(w.tickers)),
		applogger.Int("ok", ok),
		applogger.Int("attention", flagged),
		applogger.Strings("failed", failed),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return ok
}
