package indicators

import (
	"math"
	"sort"

	talib "github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

// squeezeQuantile is the bandwidth decile under which the bands count as squeezed.
const squeezeQuantile = 0.1

// Bollinger returns the middle band (SMA), upper and lower bands at k sample
// standard deviations and the close position within the bands. Position is
// clamped to [0,1] and reads 0.5 when the window is flat.
func Bollinger(closes []float64, n int, k float64) (middle, upper, lower, position []float64) {
	size := len(closes)
	position = nanSlice(size)
	if n < 2 || size < n {
		return nanSlice(size), nanSlice(size), nanSlice(size), position
	}
	// talib scales the population deviation
	dev := k * math.Sqrt(float64(n)/float64(n-1))
	upper, middle, lower = talib.BBands(closes, n, dev, dev, talib.SMA)
	hi, lo := talib.Max(closes, n), talib.Min(closes, n)
	for i := range closes {
		if i < n-1 {
			middle[i], upper[i], lower[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		if hi[i] == lo[i] || upper[i] <= lower[i] {
			upper[i], lower[i] = middle[i], middle[i]
			position[i] = 0.5
			continue
		}
		position[i] = clamp((closes[i]-lower[i])/(upper[i]-lower[i]), 0, 1)
	}
	return middle, upper, lower, position
}

// Bandwidth is the band spread relative to the middle band.
func Bandwidth(middle, upper, lower []float64) []float64 {
	out := nanSlice(len(middle))
	for i, m := range middle {
		if math.IsNaN(m) || m == 0 {
			continue
		}
		out[i] = (upper[i] - lower[i]) / m
	}
	return out
}

// Squeeze marks bars (1 or 0) whose bandwidth sits below the low decile of
// the trailing window bandwidths. Bars without a full defined window are NaN.
func Squeeze(bandwidth []float64, window int) []float64 {
	out := nanSlice(len(bandwidth))
	if window < 2 {
		return out
	}
	buf := make([]float64, window)
	for i := window - 1; i < len(bandwidth); i++ {
		copy(buf, bandwidth[i-window+1:i+1])
		if firstUndefined(buf) >= 0 {
			continue
		}
		sort.Float64s(buf)
		out[i] = 0
		if bandwidth[i] < stat.Quantile(squeezeQuantile, stat.Empirical, buf, nil) {
			out[i] = 1
		}
	}
	return out
}

// ATR returns the Wilder-smoothed average true range, defined from bar n.
func ATR(highs, lows, closes []float64, n int) []float64 {
	if n < 1 || len(closes) <= n {
		return nanSlice(len(closes))
	}
	return mask(talib.Atr(highs, lows, closes, n), n)
}

func firstUndefined(x []float64) int {
	for i, v := range x {
		if math.IsNaN(v) {
			return i
		}
	}
	return -1
}
