package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// SMA returns the simple moving average of x over n bars. A window containing
// an undefined value is undefined.
func SMA(x []float64, n int) []float64 {
	if n <= 0 || len(x) < n {
		return nanSlice(len(x))
	}
	filled := make([]float64, len(x))
	gaps := make([]float64, len(x))
	for i, v := range x {
		if math.IsNaN(v) {
			gaps[i] = 1
			continue
		}
		filled[i] = v
	}
	out := mask(talib.Sma(filled, n), n-1)
	holes := talib.Sma(gaps, n)
	for i := n - 1; i < len(out); i++ {
		if holes[i] > 0 {
			out[i] = math.NaN()
		}
	}
	return out
}

// EMA returns the exponential moving average of x with smoothing 2/(n+1),
// seeded with the SMA of the first n defined values. Leading undefined values
// are skipped and the average stops at the next undefined one.
func EMA(x []float64, n int) []float64 {
	out := nanSlice(len(x))
	start := firstDefined(x)
	if n <= 0 || start < 0 {
		return out
	}
	end := start
	for end < len(x) && !math.IsNaN(x[end]) {
		end++
	}
	if end-start < n {
		return out
	}
	ema := talib.Ema(x[start:end], n)
	copy(out[start+n-1:end], ema[n-1:])
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// mask marks the first warm values of xs undefined in place. talib pads its
// warm-up with zeros.
func mask(xs []float64, warm int) []float64 {
	for i := 0; i < warm && i < len(xs); i++ {
		xs[i] = math.NaN()
	}
	return xs
}

func firstDefined(x []float64) int {
	for i, v := range x {
		if !math.IsNaN(v) {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
