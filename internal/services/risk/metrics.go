package risk

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"EquityPulse/internal/domain/models"
)

// Config controls the risk window and annualization.
type Config struct {
	Confidence          float64 `yaml:"confidence" json:"confidence" default:"0.95" validate:"gt=0.5,lt=1"`
	Window              int     `yaml:"window" json:"window" default:"252" validate:"gte=2"`
	MinBars             int     `yaml:"min_bars" json:"min_bars" default:"20" validate:"gte=2,ltefield=Window"`
	RiskFreeRate        float64 `yaml:"risk_free_rate" json:"risk_free_rate" default:"0.02" validate:"gte=0,lt=1"`
	AnnualizationFactor float64 `yaml:"annualization_factor" json:"annualization_factor" default:"252" validate:"gt=0"`
}

const zeroDeviation = 1e-15

// Returns computes simple close-to-close returns.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out
}

// Compute derives VaR, expected shortfall, Sharpe and Sortino over the
// trailing window, and max drawdown over the whole series. Loss measures are
// positive percentages; drawdown is a non-positive percentage.
func Compute(series models.OHLCVSeries, cfg Config) models.RiskMetrics {
	closes := series.Closes()
	var m models.RiskMetrics
	if len(closes) >= 2 {
		m.MaxDrawdown = models.Float(100 * MaxDrawdown(closes))
	}

	rets := Returns(closes)
	if len(rets) > cfg.Window {
		rets = rets[len(rets)-cfg.Window:]
	}
	if len(rets) < cfg.MinBars {
		return m
	}

	q := Percentile(rets, 1-cfg.Confidence)
	m.ValueAtRisk = models.Float(lossPct(q))
	tail := 0.0
	count := 0
	for _, r := range rets {
		if r <= q {
			tail += r
			count++
		}
	}
	m.ExpectedShortfall = models.Float(lossPct(tail / float64(count)))

	mean, sd := stat.MeanStdDev(rets, nil)
	excess := mean - cfg.RiskFreeRate/cfg.AnnualizationFactor
	scale := math.Sqrt(cfg.AnnualizationFactor)
	if sd > zeroDeviation {
		m.Sharpe = models.Float(excess / sd * scale)
	}
	if dd := downsideDeviation(rets); dd > zeroDeviation {
		m.Sortino = models.Float(excess / dd * scale)
	}
	return m
}

// lossPct turns a return into a loss magnitude in percent without producing
// negative zero.
func lossPct(r float64) float64 {
	v := -100 * r
	if v == 0 {
		return 0
	}
	return v
}

// Percentile uses linear interpolation between closest ranks.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// downsideDeviation is the sample stdev of the negative returns only; NaN
// when fewer than two are negative.
func downsideDeviation(rets []float64) float64 {
	neg := make([]float64, 0, len(rets))
	for _, r := range rets {
		if r < 0 {
			neg = append(neg, r)
		}
	}
	if len(neg) < 2 {
		return math.NaN()
	}
	return stat.StdDev(neg, nil)
}

// MaxDrawdown tracks the running peak of the close curve and returns the
// deepest decline from it as a fraction <= 0.
func MaxDrawdown(closes []float64) float64 {
	if len(closes) == 0 {
		return 0
	}
	peak := closes[0]
	worst := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if dd := c/peak - 1; dd < worst {
			worst = dd
		}
	}
	return worst
}
