package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// RSI computes the Wilder-smoothed relative strength index. The first n bars
// are undefined. A series that has not moved yet reads 50.
func RSI(closes []float64, n int) []float64 {
	if n < 2 || len(closes) <= n {
		return nanSlice(len(closes))
	}
	out := mask(talib.Rsi(closes, n), n)
	moved := false
	for i := 1; i < len(closes); i++ {
		moved = moved || closes[i] != closes[i-1]
		if i < n {
			continue
		}
		if !moved {
			out[i] = 50
			continue
		}
		out[i] = clamp(out[i], 0, 100)
	}
	return out
}

// Stochastic returns %K over k bars and %D as the d-bar SMA of %K. %K is
// undefined when the window high equals the window low.
func Stochastic(highs, lows, closes []float64, k, d int) (pctK, pctD []float64) {
	pctK = nanSlice(len(closes))
	for i, r := range WilliamsR(highs, lows, closes, k) {
		if !math.IsNaN(r) {
			pctK[i] = clamp(100+r, 0, 100)
		}
	}
	return pctK, SMA(pctK, d)
}

// WilliamsR returns Williams %R in [-100, 0], undefined on a flat window.
func WilliamsR(highs, lows, closes []float64, n int) []float64 {
	if n < 2 || len(closes) < n {
		return nanSlice(len(closes))
	}
	out := mask(talib.WillR(highs, lows, closes, n), n-1)
	hh, ll := talib.Max(highs, n), talib.Min(lows, n)
	for i := n - 1; i < len(out); i++ {
		if hh[i] == ll[i] {
			out[i] = math.NaN()
			continue
		}
		out[i] = clamp(out[i], -100, 0)
	}
	return out
}
