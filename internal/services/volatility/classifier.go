package volatility

import (
	"math"

	"EquityPulse/internal/domain/models"
)

// Config sets the volatility window, annualization and regime bands. Bands are
// annualized percentages and apply to every instrument alike.
type Config struct {
	Window              int     `yaml:"window" json:"window" default:"20" validate:"gte=2"`
	LongWindow          int     `yaml:"long_window" json:"long_window" default:"60" validate:"gtefield=Window"`
	AnnualizationFactor float64 `yaml:"annualization_factor" json:"annualization_factor" default:"252" validate:"gt=0"`
	LowBand             float64 `yaml:"low_band" json:"low_band" default:"15" validate:"gt=0"`
	HighBand            float64 `yaml:"high_band" json:"high_band" default:"30" validate:"gtfield=LowBand"`
	ClusterBars         int     `yaml:"cluster_bars" json:"cluster_bars" default:"5" validate:"gte=1"`
}

// Result is the volatility view of a series. Volatilities are percentages.
type Result struct {
	Volatility     *float64
	VolatilityLong *float64
	Percentile     *float64
	Regime         models.VolatilityRegime
	// Rolling is the per-bar volatility, NaN during warm-up.
	Rolling []float64
}

// RegimeOf places a volatility percentage in its band.
func (c Config) RegimeOf(vol float64) models.Regime {
	switch {
	case vol < c.LowBand:
		return models.RegimeLow
	case vol >= c.HighBand:
		return models.RegimeHigh
	}
	return models.RegimeMedium
}

// Classify computes current volatility, its regime and whether elevated
// volatility has persisted over the trailing cluster bars.
func Classify(series models.OHLCVSeries, cfg Config) Result {
	closes := series.Closes()
	rolling := Rolling(closes, cfg.Window, cfg.AnnualizationFactor)
	for i := range rolling {
		rolling[i] *= 100
	}
	res := Result{Rolling: rolling}
	if len(closes) == 0 {
		return res
	}

	last := len(closes) - 1
	cur := rolling[last]
	res.Volatility = models.Float(cur)
	res.VolatilityLong = models.Float(100 * RealizedVolatility(LogReturns(closes), cfg.LongWindow, cfg.AnnualizationFactor))
	if math.IsNaN(cur) {
		return res
	}

	regime := cfg.RegimeOf(cur)
	desc := regime.String()
	res.Regime = models.VolatilityRegime{
		CurrentRegime:     &regime,
		RegimeDescription: &desc,
		VolatilityCluster: cluster(rolling, regime, cfg),
	}
	res.Percentile = models.Float(PercentileOfScore(rolling, cur))
	return res
}

// cluster is true when the regime is above low and each of the trailing
// ClusterBars bars sat at or above it.
func cluster(rolling []float64, current models.Regime, cfg Config) bool {
	if current == models.RegimeLow || len(rolling) < cfg.ClusterBars {
		return false
	}
	for _, v := range rolling[len(rolling)-cfg.ClusterBars:] {
		if math.IsNaN(v) || cfg.RegimeOf(v) < current {
			return false
		}
	}
	return true
}

// PercentileOfScore ranks x among the defined values, averaging strict and
// weak ranks so ties land in the middle.
func PercentileOfScore(values []float64, x float64) float64 {
	var n, below, equal int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		n++
		switch {
		case v < x:
			below++
		case v == x:
			equal++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return 100 * (float64(below) + 0.5*float64(equal)) / float64(n)
}
