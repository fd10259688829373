package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"EquityPulse/internal/domain/models"
)

// Minimum sample sizes for the quality measures.
const (
	qualityWindow  = 20
	impactMinPairs = 10
)

// Quality derives price efficiency, a volume-impact proxy and price
// stability. vol20 is the 20-day annualised volatility in percent and may
// be nil.
func Quality(series models.OHLCVSeries, vol20 *float64) models.MarketQuality {
	var q models.MarketQuality

	rets := Returns(series.Closes())
	if len(rets) >= qualityWindow {
		if c, ok := correlation(rets[1:], rets[:len(rets)-1]); ok {
			q.PriceEfficiency = models.Float(1 - math.Abs(c))
		}
	}

	if series.Len() >= qualityWindow {
		var dv, dp []float64
		for i := 1; i < series.Len(); i++ {
			prev, cur := series.Bars[i-1], series.Bars[i]
			v := cur.Volume/prev.Volume - 1
			p := math.Abs(cur.Close/prev.Close - 1)
			if math.IsNaN(v) || math.IsInf(v, 0) || math.IsNaN(p) || math.IsInf(p, 0) {
				continue
			}
			dv = append(dv, v)
			dp = append(dp, p)
		}
		if len(dv) >= impactMinPairs {
			if c, ok := correlation(dv, dp); ok {
				q.MarketImpactProxy = models.Float(c)
			}
		}
	}

	if vol20 != nil {
		q.PriceStability = models.Float(math.Max(0, 100-*vol20))
	}
	return q
}

// correlation is Pearson's r; ok is false when either side has no variance.
func correlation(x, y []float64) (float64, bool) {
	floor := zeroDeviation * zeroDeviation
	if stat.Variance(x, nil) <= floor || stat.Variance(y, nil) <= floor {
		return 0, false
	}
	return stat.Correlation(x, y, nil), true
}
