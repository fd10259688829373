// Package seriestest builds deterministic price series for tests.
package seriestest

import (
	"math/rand"
	"time"

	"EquityPulse/internal/domain/models"
)

// Day0 is the first bar date of generated series.
var Day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// FromCloses builds bars with open=high=low=close and the given volume.
func FromCloses(closes []float64, volume float64) models.OHLCVSeries {
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date:   Day0.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: volume,
		}
	}
	return models.OHLCVSeries{Ticker: "TEST.TO", Bars: bars}
}

// Flat is n bars at a constant price.
func Flat(n int, price float64) models.OHLCVSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = price
	}
	return FromCloses(closes, 1000)
}

// Trend is n bars rising (or falling) by step per bar.
func Trend(n int, start, step float64) models.OHLCVSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return FromCloses(closes, 1000)
}

// RandomWalk draws i.i.d. normal simple returns with mean mu and stdev sigma.
// Highs and lows straddle the close by a fraction of sigma and volume varies.
func RandomWalk(n int, mu, sigma float64, seed int64) models.OHLCVSeries {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]models.PriceBar, n)
	price := 100.0
	for i := range bars {
		if i > 0 {
			price *= 1 + mu + sigma*rng.NormFloat64()
		}
		spread := price * sigma * (0.5 + rng.Float64())
		bars[i] = models.PriceBar{
			Date:   Day0.AddDate(0, 0, i),
			Open:   price,
			High:   price + spread/2,
			Low:    price - spread/2,
			Close:  price,
			Volume: 1e5 * (0.5 + rng.Float64()),
		}
	}
	return models.OHLCVSeries{Ticker: "RAND.TO", Bars: bars}
}

// Returns extracts the simple returns of a series.
func Returns(s models.OHLCVSeries) []float64 {
	out := make([]float64, 0, s.Len())
	for i := 1; i < s.Len(); i++ {
		out = append(out, s.Bars[i].Close/s.Bars[i-1].Close-1)
	}
	return out
}
