package volatility

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LogReturns computes r_t = ln(C_t / C_{t-1}); the result has len(closes)-1
// entries, or none when fewer than two closes are given.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, math.Log(closes[i]/closes[i-1]))
	}
	return out
}

// RealizedVolatility is the annualized sample standard deviation of the last
// window returns. NaN when fewer than window returns exist.
func RealizedVolatility(returns []float64, window int, annualization float64) float64 {
	if window < 2 || len(returns) < window {
		return math.NaN()
	}
	return stat.StdDev(returns[len(returns)-window:], nil) * math.Sqrt(annualization)
}

// Rolling returns the realized volatility ending at each bar. Index i covers
// the window returns up to bar i, so the output aligns with the closes.
func Rolling(closes []float64, window int, annualization float64) []float64 {
	out := make([]float64, len(closes))
	rets := LogReturns(closes)
	for i := range out {
		// bar i has i returns behind it
		out[i] = RealizedVolatility(rets[:i], window, annualization)
	}
	return out
}
