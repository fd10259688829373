package repository

import (
	"context"
	"errors"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	"EquityPulse/pkg/cache"
	applogger "EquityPulse/pkg/logger"
)

const (
	seriesKeyPrefix = "series"
	fillLockTTL     = 15 * time.Second
	fillWaitStep    = 100 * time.Millisecond
	fillWaitSteps   = 20
)

// CachedMarketData is a read-through cache in front of another provider.
// Concurrent misses for the same key are collapsed with a cache lock.
type CachedMarketData struct {
	next    domrepo.MarketDataProvider
	cache   cache.Service
	ttl     time.Duration
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewCachedMarketData(next domrepo.MarketDataProvider, c cache.Service, ttl time.Duration, metrics domrepo.Metrics) *CachedMarketData {
	return &CachedMarketData{next: next, cache: c, ttl: ttl, metrics: metrics, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (p *CachedMarketData) SetLogger(l *applogger.Logger) { p.l = l }

func seriesKey(ticker string, from, to time.Time) string {
	return cache.GenerateKeyWithParams(seriesKeyPrefix, ticker, from.Format(models.DateLayout), to.Format(models.DateLayout))
}

func (p *CachedMarketData) Fetch(ctx context.Context, ticker string, from, to time.Time) (models.OHLCVSeries, error) {
	key := seriesKey(ticker, from, to)
	if !domrepo.CacheBypassed(ctx) {
		if s, ok := p.lookup(ctx, key); ok {
			return s, nil
		}
	}

	lockKey := key + ":lock"
	locked, err := p.cache.TryLock(ctx, lockKey, fillLockTTL)
	if err != nil {
		p.l.Warn("series cache lock error", applogger.String("key", key), applogger.Error(err))
	}
	if locked {
		defer func() { _ = p.cache.Unlock(context.WithoutCancel(ctx), lockKey) }()
	} else if err == nil && !domrepo.CacheBypassed(ctx) {
		if s, ok := p.awaitFill(ctx, key); ok {
			return s, nil
		}
	}

	series, err := p.next.Fetch(ctx, ticker, from, to)
	if err != nil {
		return series, err
	}
	if err := p.cache.Set(ctx, key, series, p.ttl); err != nil {
		p.metrics.RecordError("cache_set")
		p.l.Warn("series cache set error", applogger.String("key", key), applogger.Error(err))
	}
	return series, nil
}

// Invalidate drops every cached range of ticker.
func (p *CachedMarketData) Invalidate(ctx context.Context, ticker string) error {
	return p.cache.DeleteByPattern(ctx, cache.BuildPattern(cache.GenerateKey(seriesKeyPrefix, ticker)+":"))
}

func (p *CachedMarketData) lookup(ctx context.Context, key string) (models.OHLCVSeries, bool) {
	var s models.OHLCVSeries
	err := p.cache.Get(ctx, key, &s)
	switch {
	case err == nil:
		p.metrics.RecordCache(seriesKeyPrefix, true)
		return s, true
	case errors.Is(err, cache.ErrCacheMiss):
	default:
		p.metrics.RecordError("cache_get")
		p.l.Warn("series cache get error", applogger.String("key", key), applogger.Error(err))
	}
	p.metrics.RecordCache(seriesKeyPrefix, false)
	return s, false
}

// awaitFill polls for another caller's fill. It gives up after a short while
// and lets the caller fetch on its own.
func (p *CachedMarketData) awaitFill(ctx context.Context, key string) (models.OHLCVSeries, bool) {
	t := time.NewTicker(fillWaitStep)
	defer t.Stop()
	for i := 0; i < fillWaitSteps; i++ {
		select {
		case <-ctx.Done():
			return models.OHLCVSeries{}, false
		case <-t.C:
		}
		var s models.OHLCVSeries
		if err := p.cache.Get(ctx, key, &s); err == nil {
			p.metrics.RecordCache(seriesKeyPrefix, true)
			return s, true
		}
	}
	return models.OHLCVSeries{}, false
}

var _ domrepo.MarketDataProvider = (*CachedMarketData)(nil)
