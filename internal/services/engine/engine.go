// Package engine turns one price series into an AnalysisReport.
//
// Analyze is a pure function of its input and configuration. It performs no
// I/O and keeps no state between calls, so one Engine may serve any number of
// goroutines.
package engine

import (
	"fmt"
	"math"
	"time"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/attention"
	"EquityPulse/internal/services/indicators"
	"EquityPulse/internal/services/liquidity"
	"EquityPulse/internal/services/risk"
	"EquityPulse/internal/services/signals"
	"EquityPulse/internal/services/volatility"
)

// Lookbacks for the period change metrics, in bars.
const (
	weekBars  = 5
	monthBars = 21
	yearBars  = 252
)

// Engine runs the analysis pipeline under one validated Config. The zero
// value is not usable; build one with New.
type Engine struct {
	cfg   Config
	rules []attention.Rule
}

// Input is one analysis request with its data already fetched.
type Input struct {
	Series    models.OHLCVSeries
	Benchmark *models.OHLCVSeries
	Sector    string
	// AnalysisDate is request metadata copied into the report as is.
	AnalysisDate time.Time
}

// New validates cfg and builds an engine around it.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, rules: attention.DefaultRules(cfg.Attention)}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Analyze runs every component over the series and assembles the report.
// Invalid or too-short input fails with ErrInput and no partial report.
func (e *Engine) Analyze(in Input) (*models.AnalysisReport, error) {
	series := in.Series
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if series.Len() < e.cfg.MinBars {
		return nil, fmt.Errorf("%w: %s has %d bars, need at least %d", models.ErrInput, series.Ticker, series.Len(), e.cfg.MinBars)
	}
	if in.Benchmark != nil {
		if err := in.Benchmark.Validate(); err != nil {
			return nil, fmt.Errorf("benchmark: %w", err)
		}
	}

	closes := series.Closes()
	last := series.Len() - 1

	snap := indicators.Compute(series, e.cfg.Indicators)
	comp := signals.Compose(snap, e.cfg.Indicators, e.cfg.Signals)
	accuracy := signals.DirectionalAccuracy(closes, comp, e.cfg.Signals.Horizon)
	summary := signals.Summary(comp, accuracy, snap.At(last))

	vol := volatility.Classify(series, e.cfg.Volatility)

	rm := risk.Compute(series, e.cfg.Risk)
	rm.Volatility20d = vol.Volatility

	liq := liquidity.Score(series, e.cfg.Liquidity)

	mm := marketMetrics(series, snap, vol, rm, liq)

	flags := attention.Evaluate(attention.Inputs{
		Latest:         comp.Latest,
		Regime:         vol.Regime,
		Volatility:     vol.Volatility,
		DailyChangePct: mm.DailyChangePct,
		DailyRangePct:  mm.DailyRangePct,
		VolumeRatio:    mm.VolumeRatio,
		LiquidityScore: liq.LiquidityScore,
		MaxDrawdown:    rm.MaxDrawdown,
	}, e.rules)

	report := &models.AnalysisReport{
		Metadata: models.ReportMetadata{
			Ticker:       series.Ticker,
			Sector:       in.Sector,
			AnalysisDate: in.AnalysisDate,
			DataPeriod: models.DataPeriod{
				Start:     series.Start().Format(models.DateLayout),
				End:       series.End().Format(models.DateLayout),
				TotalDays: series.Len(),
			},
		},
		Signals:          summary,
		VolatilityRegime: vol.Regime,
		MarketMetrics:    mm,
		AttentionFlags:   flags,
		DataSummary:      dataSummary(comp, vol.Rolling),
	}
	if in.Benchmark != nil {
		report.RelativePerformance = risk.Relative(series, *in.Benchmark, e.cfg.Risk)
	}
	return report, nil
}

func marketMetrics(s models.OHLCVSeries, snap indicators.Snapshot, vol volatility.Result, rm models.RiskMetrics, liq models.LiquidityMetrics) models.MarketMetrics {
	last := s.Len() - 1
	bar := s.Bars[last]
	q := risk.Quality(s, vol.Volatility)
	return models.MarketMetrics{
		CurrentPrice:         bar.Close,
		DailyOpen:            bar.Open,
		DailyHigh:            bar.High,
		DailyLow:             bar.Low,
		DailyChangePct:       models.Float((bar.Close - bar.Open) / bar.Open * 100),
		DailyRangePct:        models.Float((bar.High - bar.Low) / bar.Close * 100),
		WeekChangePct:        changeOver(s, weekBars),
		MonthChangePct:       changeOver(s, monthBars),
		YearChangePct:        changeOver(s, yearBars),
		Volatility20d:        vol.Volatility,
		Volatility60d:        vol.VolatilityLong,
		VolatilityPercentile: vol.Percentile,
		ATRPct:               models.Float(snap.ATR[last] / bar.Close * 100),
		VolumeRatio:          models.Float(snap.VolumeRatio[last]),
		AvgVolume20d:         liq.AvgVolume20d,
		DollarVolume:         liq.DollarVolume,
		VWAP20d:              liq.VWAP20d,
		PriceVsVWAP:          liq.PriceVsVWAP,
		VolumeZScore:         models.Float(snap.VolumeZ[last]),
		SpreadProxy:          liq.SpreadProxy,
		SpreadVolatility:     liq.SpreadVolatility,
		SpreadPercentile:     liq.SpreadPercentile,
		BBSqueeze:            snap.SqueezeAt(last),
		LiquidityScore:       liq.LiquidityScore,
		ValueAtRisk:          rm.ValueAtRisk,
		ExpectedShortfall:    rm.ExpectedShortfall,
		SharpeRatio:          rm.Sharpe,
		SortinoRatio:         rm.Sortino,
		MaxDrawdown:          rm.MaxDrawdown,
		PriceEfficiency:      q.PriceEfficiency,
		MarketImpactProxy:    q.MarketImpactProxy,
		PriceStability:       q.PriceStability,
	}
}

func dataSummary(comp signals.Composite, rolling []float64) models.DataSummary {
	var ds models.DataSummary
	for _, b := range comp.Bars {
		if !b.Defined {
			continue
		}
		switch b.Composite {
		case models.Buy:
			ds.BuySignals++
		case models.Sell:
			ds.SellSignals++
		}
	}
	ds.TotalSignals = ds.BuySignals + ds.SellSignals

	sum, n := 0.0, 0
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range rolling {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if n > 0 {
		ds.AvgVolatility = models.Float(sum / float64(n))
		ds.MinVolatility = models.Float(lo)
		ds.MaxVolatility = models.Float(hi)
	}
	return ds
}

// changeOver is the close-to-close change across the last bars bars, in percent.
func changeOver(s models.OHLCVSeries, bars int) *float64 {
	last := s.Len() - 1
	if last < bars {
		return nil
	}
	prev := s.Bars[last-bars].Close
	return models.Float((s.Bars[last].Close/prev - 1) * 100)
}
