package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	pkgch "EquityPulse/pkg/clickhouse"
	applogger "EquityPulse/pkg/logger"
)

// barChunkSize bounds the rows of one multi-row INSERT.
const barChunkSize = 2000

// CHMarketData implements BarStore backed by ClickHouse.
type CHMarketData struct {
	db     *sql.DB
	table  string
	source string
	l      *applogger.Logger
}

func NewCHMarketData(ch *pkgch.Client) *CHMarketData {
	return &CHMarketData{db: ch.DB(), table: qualified(ch.Database(), barsTable), source: "yahoo"}
}

// SetLogger injects a structured logger.
func (s *CHMarketData) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHMarketData) Fetch(ctx context.Context, ticker string, from, to time.Time) (models.OHLCVSeries, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT date, open, high, low, close, volume
        FROM %s FINAL
        WHERE ticker = ? AND date >= ? AND date <= ?
        ORDER BY date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, ticker, from, to)
	if err != nil {
		s.logError("clickhouse fetch_bars query error", ticker, err)
		return models.OHLCVSeries{}, fmt.Errorf("fetch bars: %w", err)
	}
	defer rows.Close()

	series := models.OHLCVSeries{Ticker: ticker, Bars: make([]models.PriceBar, 0, 256)}
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logError("clickhouse fetch_bars scan error", ticker, err)
			return models.OHLCVSeries{}, fmt.Errorf("scan bar: %w", err)
		}
		b.Date = b.Date.UTC()
		series.Bars = append(series.Bars, b)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse fetch_bars rows error", ticker, err)
		return models.OHLCVSeries{}, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse fetch_bars ok",
			applogger.String("ticker", ticker),
			applogger.Int("rows", series.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	if series.Len() == 0 {
		return series, fmt.Errorf("%w: %s %s..%s in clickhouse", models.ErrNotAvailable,
			ticker, from.Format(models.DateLayout), to.Format(models.DateLayout))
	}
	return series, nil
}

// StoreBars upserts the series. Re-inserting a date replaces the previous row
// once ClickHouse merges the parts; reads use FINAL.
func (s *CHMarketData) StoreBars(ctx context.Context, series models.OHLCVSeries) error {
	for start := 0; start < series.Len(); start += barChunkSize {
		end := start + barChunkSize
		if end > series.Len() {
			end = series.Len()
		}
		q, args := buildBarInsert(s.table, s.source, series.Ticker, series.Bars[start:end])
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logError("clickhouse store_bars error", series.Ticker, err)
			return fmt.Errorf("store bars: %w", err)
		}
	}
	return nil
}

func (s *CHMarketData) logError(msg, ticker string, err error) {
	if s.l != nil {
		s.l.Error(msg,
			applogger.String("table", s.table),
			applogger.String("ticker", ticker),
			applogger.Error(err),
		)
	}
}

func buildBarInsert(table, source, ticker string, bars []models.PriceBar) (string, []interface{}) {
	values := make([]string, 0, len(bars))
	args := make([]interface{}, 0, len(bars)*8)
	for _, b := range bars {
		if b.Date.IsZero() {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, ticker, b.Date, b.Open, b.High, b.Low, b.Close, b.Volume, source)
	}
	q := fmt.Sprintf("INSERT INTO %s (ticker, date, open, high, low, close, volume, source) VALUES %s",
		table, strings.Join(values, ","))
	return q, args
}

var _ domrepo.BarStore = (*CHMarketData)(nil)
