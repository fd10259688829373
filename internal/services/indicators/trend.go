package indicators

import "math"

// MACD returns the MACD line, its signal line and the histogram. The signal
// EMA runs over the defined part of the line only.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist []float64) {
	ef := EMA(closes, fast)
	es := EMA(closes, slow)
	line = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(ef[i]) && !math.IsNaN(es[i]) {
			line[i] = ef[i] - es[i]
		}
	}
	sig = EMA(line, signal)
	hist = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(line[i]) && !math.IsNaN(sig[i]) {
			hist[i] = line[i] - sig[i]
		}
	}
	return line, sig, hist
}
