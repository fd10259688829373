package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	applogger "EquityPulse/pkg/logger"
)

// FallbackMarketData reads the local bar store first and falls back to a
// remote provider when the store has nothing or does not cover the range.
// Remote results are written back to the store when backfill is on.
type FallbackMarketData struct {
	store    domrepo.BarStore
	remote   domrepo.MarketDataProvider
	backfill bool
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewFallbackMarketData(store domrepo.BarStore, remote domrepo.MarketDataProvider, backfill bool, metrics domrepo.Metrics) *FallbackMarketData {
	return &FallbackMarketData{store: store, remote: remote, backfill: backfill, metrics: metrics, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (p *FallbackMarketData) SetLogger(l *applogger.Logger) { p.l = l }

func (p *FallbackMarketData) Fetch(ctx context.Context, ticker string, from, to time.Time) (models.OHLCVSeries, error) {
	series, err := p.store.Fetch(ctx, ticker, from, to)
	switch {
	case err == nil && covers(series, to):
		return series, nil
	case err != nil && !errors.Is(err, models.ErrNotAvailable):
		p.metrics.RecordError("store_fetch")
		p.l.Warn("bar store fetch failed, using remote",
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
	}

	remote, rerr := p.remote.Fetch(ctx, ticker, from, to)
	if rerr != nil {
		if err == nil && series.Len() > 0 && errors.Is(rerr, models.ErrNotAvailable) {
			return series, nil
		}
		return models.OHLCVSeries{}, fmt.Errorf("remote provider: %w", rerr)
	}
	if p.backfill {
		if err := p.store.StoreBars(ctx, remote); err != nil {
			p.metrics.RecordError("store_backfill")
			p.l.Warn("bar backfill failed",
				applogger.String("ticker", ticker),
				applogger.Int("bars", remote.Len()),
				applogger.Error(err),
			)
		}
	}
	return remote, nil
}

// covers reports whether s reaches the last weekday on or before to. Stored
// data older than that is treated as stale.
func covers(s models.OHLCVSeries, to time.Time) bool {
	if s.Len() == 0 {
		return false
	}
	want := to
	for want.Weekday() == time.Saturday || want.Weekday() == time.Sunday {
		want = want.AddDate(0, 0, -1)
	}
	return !s.End().Before(want)
}

var _ domrepo.MarketDataProvider = (*FallbackMarketData)(nil)
