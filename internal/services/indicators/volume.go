package indicators

import (
	"math"

	talib "github.com/markcheno/go-talib"
)

// VolumeRatio compares each bar's volume with the n-bar average volume
// ending at that bar. Undefined when the average is zero.
func VolumeRatio(volumes []float64, n int) []float64 {
	avg := SMA(volumes, n)
	out := nanSlice(len(volumes))
	for i, a := range avg {
		if math.IsNaN(a) || a == 0 {
			continue
		}
		out[i] = volumes[i] / a
	}
	return out
}

// VolumeZScore measures each volume against its n-bar mean in sample
// standard deviations. A window of identical volumes is undefined.
func VolumeZScore(volumes []float64, n int) []float64 {
	out := nanSlice(len(volumes))
	if n < 2 || len(volumes) < n {
		return out
	}
	mean := talib.Sma(volumes, n)
	sd := talib.StdDev(volumes, n, math.Sqrt(float64(n)/float64(n-1)))
	hi, lo := talib.Max(volumes, n), talib.Min(volumes, n)
	for i := n - 1; i < len(volumes); i++ {
		if hi[i] == lo[i] || sd[i] <= 0 {
			continue
		}
		out[i] = (volumes[i] - mean[i]) / sd[i]
	}
	return out
}

// OBV is on-balance volume, starting from the first bar's volume.
func OBV(closes, volumes []float64) []float64 {
	if len(closes) == 0 {
		return []float64{}
	}
	return talib.Obv(closes, volumes)
}

// VPT accumulates volume times the simple return. The first bar has no
// return and is undefined.
func VPT(closes, volumes []float64) []float64 {
	out := nanSlice(len(closes))
	sum := 0.0
	for i := 1; i < len(closes); i++ {
		sum += volumes[i] * (closes[i]/closes[i-1] - 1)
		out[i] = sum
	}
	return out
}
