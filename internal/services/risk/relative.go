package risk

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"EquityPulse/internal/domain/models"
)

// Trailing windows, in returns, of the relative return measures.
const (
	relativeShortBars = 20
	relativeLongBars  = 60
)

// Relative compares the series with a benchmark over their common dates.
// It returns nil when the benchmark is empty.
func Relative(series, benchmark models.OHLCVSeries, cfg Config) *models.RelativePerformance {
	if benchmark.Len() == 0 {
		return nil
	}
	bench := make(map[string]float64, benchmark.Len())
	for _, b := range benchmark.Bars {
		bench[b.Date.Format(models.DateLayout)] = b.Close
	}
	var assetCloses, benchCloses []float64
	for _, b := range series.Bars {
		if c, ok := bench[b.Date.Format(models.DateLayout)]; ok {
			assetCloses = append(assetCloses, b.Close)
			benchCloses = append(benchCloses, c)
		}
	}

	out := &models.RelativePerformance{Benchmark: benchmark.Ticker, CommonDays: len(assetCloses)}
	ra, rb := Returns(assetCloses), Returns(benchCloses)
	if len(ra) < cfg.MinBars {
		return out
	}

	totalA := assetCloses[len(assetCloses)-1]/assetCloses[0] - 1
	totalB := benchCloses[len(benchCloses)-1]/benchCloses[0] - 1
	out.ExcessReturnPct = models.Float(100 * (totalA - totalB))

	if vb := stat.Variance(rb, nil); vb > zeroDeviation*zeroDeviation {
		out.Beta = models.Float(stat.Covariance(ra, rb, nil) / vb)
		if va := stat.Variance(ra, nil); va > zeroDeviation*zeroDeviation {
			out.Correlation = models.Float(stat.Correlation(ra, rb, nil))
		}
	}

	active := make([]float64, len(ra))
	for i := range ra {
		active[i] = ra[i] - rb[i]
	}
	if mean, sd := stat.MeanStdDev(active, nil); sd > zeroDeviation {
		out.InformationRatio = models.Float(mean / sd * math.Sqrt(cfg.AnnualizationFactor))
	}
	if n := len(active); n >= relativeShortBars {
		out.RelativeReturn20 = models.Float(100 * floats.Sum(active[n-relativeShortBars:]))
	}
	if n := len(active); n >= relativeLongBars {
		out.RelativeReturn60 = models.Float(100 * floats.Sum(active[n-relativeLongBars:]))
	}

	// CAPM alpha, annualised, in percent.
	if out.Beta != nil {
		ann := cfg.AnnualizationFactor
		market := stat.Mean(rb, nil) * ann
		expected := cfg.RiskFreeRate + *out.Beta*(market-cfg.RiskFreeRate)
		out.Alpha = models.Float(100 * (stat.Mean(ra, nil)*ann - expected))
	}
	return out
}
