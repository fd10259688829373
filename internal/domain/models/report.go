package models

import (
	"encoding/json"
	"math"
	"time"
)

// AnalysisReport is the immutable result of one analysis request.
type AnalysisReport struct {
	Metadata            ReportMetadata       `json:"metadata"`
	Signals             SignalSummary        `json:"signals"`
	VolatilityRegime    VolatilityRegime     `json:"volatility_regime"`
	MarketMetrics       MarketMetrics        `json:"market_metrics"`
	AttentionFlags      AttentionFlags       `json:"attention_flags"`
	RelativePerformance *RelativePerformance `json:"relative_performance,omitempty"`
	DataSummary         DataSummary          `json:"data_summary"`
}

type ReportMetadata struct {
	Ticker       string     `json:"ticker"`
	Sector       string     `json:"sector"`
	AnalysisDate time.Time  `json:"analysis_date"`
	DataPeriod   DataPeriod `json:"data_period"`
}

type DataPeriod struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	TotalDays int    `json:"total_days"`
}

// SignalSummary is the composite signal view of a report.
type SignalSummary struct {
	LatestSignal        *Signal             `json:"latest_signal"`
	SignalBreakdown     map[string]Signal   `json:"signal_breakdown"`
	DirectionalAccuracy *float64            `json:"directional_accuracy"`
	TechnicalIndicators map[string]*float64 `json:"technical_indicators"`
}

// Regime is the ordinal volatility level.
type Regime int

const (
	RegimeLow Regime = iota
	RegimeMedium
	RegimeHigh
)

func (r Regime) String() string {
	switch r {
	case RegimeLow:
		return "low"
	case RegimeMedium:
		return "medium"
	default:
		return "high"
	}
}

type VolatilityRegime struct {
	CurrentRegime     *Regime `json:"current_regime"`
	RegimeDescription *string `json:"regime_description"`
	VolatilityCluster bool    `json:"volatility_cluster"`
}

// RiskMetrics values are percentages except the ratios. Nil means undefined.
type RiskMetrics struct {
	ValueAtRisk       *float64 `json:"value_at_risk"`
	ExpectedShortfall *float64 `json:"expected_shortfall"`
	Sharpe            *float64 `json:"sharpe_ratio"`
	Sortino           *float64 `json:"sortino_ratio"`
	MaxDrawdown       *float64 `json:"max_drawdown"`
	Volatility20d     *float64 `json:"volatility_20d"`
}

type LiquidityMetrics struct {
	SpreadProxy    *float64 `json:"spread_proxy"`
	LiquidityScore *float64 `json:"liquidity_score"`
	AvgVolume20d   *float64 `json:"avg_volume_20d"`
	DollarVolume   *float64 `json:"dollar_volume"`
	VWAP20d        *float64 `json:"vwap_20d"`
	PriceVsVWAP    *float64 `json:"price_vs_vwap"`
	// SpreadVolatility and SpreadPercentile describe the daily range in percent.
	SpreadVolatility *float64 `json:"spread_volatility"`
	SpreadPercentile *float64 `json:"spread_percentile"`
}

// MarketQuality scores how orderly trading was over the period.
type MarketQuality struct {
	PriceEfficiency   *float64 `json:"price_efficiency"`
	MarketImpactProxy *float64 `json:"market_impact_proxy"`
	PriceStability    *float64 `json:"price_stability"`
}

// MarketMetrics is the flattened metrics block of the report.
type MarketMetrics struct {
	CurrentPrice         float64  `json:"current_price"`
	DailyOpen            float64  `json:"daily_open"`
	DailyHigh            float64  `json:"daily_high"`
	DailyLow             float64  `json:"daily_low"`
	DailyChangePct       *float64 `json:"daily_change_pct"`
	DailyRangePct        *float64 `json:"daily_range_pct"`
	WeekChangePct        *float64 `json:"week_change_pct"`
	MonthChangePct       *float64 `json:"month_change_pct"`
	YearChangePct        *float64 `json:"year_change_pct"`
	Volatility20d        *float64 `json:"volatility_20d"`
	Volatility60d        *float64 `json:"volatility_60d"`
	VolatilityPercentile *float64 `json:"volatility_percentile"`
	ATRPct               *float64 `json:"atr_percentage"`
	VolumeRatio          *float64 `json:"volume_ratio"`
	AvgVolume20d         *float64 `json:"avg_volume_20d"`
	DollarVolume         *float64 `json:"dollar_volume"`
	VWAP20d              *float64 `json:"vwap_20d"`
	PriceVsVWAP          *float64 `json:"price_vs_vwap"`
	VolumeZScore         *float64 `json:"volume_zscore"`
	SpreadProxy          *float64 `json:"spread_proxy"`
	SpreadVolatility     *float64 `json:"spread_volatility"`
	SpreadPercentile     *float64 `json:"spread_percentile"`
	BBSqueeze            *bool    `json:"bb_squeeze"`
	LiquidityScore       *float64 `json:"liquidity_score"`
	ValueAtRisk          *float64 `json:"value_at_risk"`
	ExpectedShortfall    *float64 `json:"expected_shortfall"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	SortinoRatio         *float64 `json:"sortino_ratio"`
	MaxDrawdown          *float64 `json:"max_drawdown"`
	PriceEfficiency      *float64 `json:"price_efficiency"`
	MarketImpactProxy    *float64 `json:"market_impact_proxy"`
	PriceStability       *float64 `json:"price_stability"`
}

// Severity orders attention levels.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityHigh:
		return "high"
	case SeverityMedium:
		return "medium"
	default:
		return "low"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *Severity) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v {
	case "high":
		*s = SeverityHigh
	case "medium":
		*s = SeverityMedium
	default:
		*s = SeverityLow
	}
	return nil
}

type AttentionFlags struct {
	RequiresAttention bool     `json:"requires_attention"`
	RiskLevel         Severity `json:"risk_level"`
	TriggeredReasons  []string `json:"triggered_reasons"`
}

// DataSummary counts composite calls over defined bars and summarizes the
// rolling volatility path.
type DataSummary struct {
	TotalSignals  int      `json:"total_signals"`
	BuySignals    int      `json:"buy_signals"`
	SellSignals   int      `json:"sell_signals"`
	AvgVolatility *float64 `json:"avg_volatility"`
	MaxVolatility *float64 `json:"max_volatility"`
	MinVolatility *float64 `json:"min_volatility"`
}

// RelativePerformance compares the instrument with a benchmark over common dates.
type RelativePerformance struct {
	Benchmark        string   `json:"benchmark"`
	CommonDays       int      `json:"common_days"`
	Beta             *float64 `json:"beta"`
	Correlation      *float64 `json:"correlation"`
	ExcessReturnPct  *float64 `json:"excess_return_pct"`
	InformationRatio *float64 `json:"information_ratio"`
	RelativeReturn20 *float64 `json:"relative_return_20d"`
	RelativeReturn60 *float64 `json:"relative_return_60d"`
	Alpha            *float64 `json:"alpha"`
}

// Float returns nil for NaN or infinite values, otherwise a pointer to v.
func Float(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Value dereferences p, returning NaN for nil.
func Value(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
