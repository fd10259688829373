// Package liquidity scores how easily an instrument trades using only its
// bar history: a high-low spread proxy and trailing volume, both ranked
// against the instrument's own past.
package liquidity

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/indicators"
	"EquityPulse/internal/services/volatility"
)

// Config sets the trailing window and how volume and spread weigh in the score.
type Config struct {
	Window       int     `yaml:"window" json:"window" default:"20" validate:"gte=2"`
	VolumeWeight float64 `yaml:"volume_weight" json:"volume_weight" default:"0.5" validate:"gte=0"`
	SpreadWeight float64 `yaml:"spread_weight" json:"spread_weight" default:"0.5" validate:"gte=0"`
}

// Check rejects a configuration whose weights cannot form a score.
func (c Config) Check() error {
	if c.VolumeWeight+c.SpreadWeight <= 0 {
		return models.ErrConfiguration
	}
	return nil
}

// Spreads returns (high-low)/close per bar in percent.
func Spreads(s models.OHLCVSeries) []float64 {
	out := make([]float64, s.Len())
	for i, b := range s.Bars {
		out[i] = (b.High - b.Low) / b.Close * 100
	}
	return out
}

// Score computes the liquidity metrics at the latest bar. Every field is nil
// when the series is shorter than the window.
func Score(s models.OHLCVSeries, cfg Config) models.LiquidityMetrics {
	var m models.LiquidityMetrics
	n := s.Len()
	if n < cfg.Window || n == 0 {
		return m
	}

	volumes := make([]float64, n)
	for i, b := range s.Bars {
		volumes[i] = b.Volume
	}
	spreads := Spreads(s)
	meanVol := indicators.SMA(volumes, cfg.Window)
	meanSpread := indicators.SMA(spreads, cfg.Window)

	last := s.Bars[n-1]
	curVol, curSpread := meanVol[n-1], meanSpread[n-1]
	m.SpreadProxy = models.Float(curSpread)
	m.AvgVolume20d = models.Float(curVol)
	m.DollarVolume = models.Float(last.Volume * last.Close)

	var pv, vs float64
	for _, b := range s.Bars[n-cfg.Window:] {
		pv += b.Close * b.Volume
		vs += b.Volume
	}
	if vs > 0 {
		vwap := pv / vs
		m.VWAP20d = models.Float(vwap)
		m.PriceVsVWAP = models.Float((last.Close - vwap) / vwap * 100)
	}
	m.SpreadVolatility = models.Float(stat.StdDev(spreads[n-cfg.Window:], nil))
	m.SpreadPercentile = models.Float(volatility.PercentileOfScore(spreads, spreads[n-1]))

	volumeRank := 0.0
	if curVol > 0 {
		volumeRank = fractionWhere(meanVol, func(v float64) bool { return v <= curVol })
	}
	spreadRank := fractionWhere(meanSpread, func(v float64) bool { return v >= curSpread })

	score := 100 * (cfg.VolumeWeight*volumeRank + cfg.SpreadWeight*spreadRank) / (cfg.VolumeWeight + cfg.SpreadWeight)
	m.LiquidityScore = models.Float(math.Max(0, math.Min(100, score)))
	return m
}

// fractionWhere is the share of defined values satisfying ok.
func fractionWhere(xs []float64, ok func(float64) bool) float64 {
	total, hits := 0, 0
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		total++
		if ok(x) {
			hits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
