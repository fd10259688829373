package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/seriestest"
)

func defaultConfig() Config {
	return Config{
		RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		BBPeriod: 20, BBStdDev: 2, MAShort: 5, MALong: 20,
		StochK: 14, StochD: 3, VolumePeriod: 20, ATRPeriod: 14, WilliamsPeriod: 14,
		SqueezeWindow: 20,
	}
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name     string
		x        []float64
		n        int
		expected []float64
	}{
		{"three bar", []float64{10, 20, 30, 40}, 3, []float64{math.NaN(), math.NaN(), 20, 30}},
		{"window longer than input", []float64{1, 2}, 5, []float64{math.NaN(), math.NaN()}},
		{"undefined inside window", []float64{math.NaN(), 2, 4, 6}, 2, []float64{math.NaN(), math.NaN(), 3, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.x, tt.n)
			require.Len(t, got, len(tt.expected))
			for i := range got {
				if math.IsNaN(tt.expected[i]) {
					assert.True(t, math.IsNaN(got[i]), "index %d", i)
					continue
				}
				assert.InDelta(t, tt.expected[i], got[i], 1e-9, "index %d", i)
			}
		})
	}
}

func TestEMASeededWithSMA(t *testing.T) {
	got := EMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-9)
	assert.InDelta(t, 0.5*4+0.5*2, got[3], 1e-9)
	assert.InDelta(t, 0.5*5+0.5*3, got[4], 1e-9)
}

func TestRSIBounds(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 4, 5} {
		s := seriestest.RandomWalk(300, 0, 0.02, seed)
		rsi := RSI(s.Closes(), 14)
		for i, v := range rsi {
			if i < 14 {
				assert.True(t, math.IsNaN(v), "warm-up bar %d must be undefined", i)
				continue
			}
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 100.0)
		}
	}
}

func TestRSIShortSeriesUndefined(t *testing.T) {
	rsi := RSI(seriestest.Trend(10, 100, 1).Closes(), 14)
	for _, v := range rsi {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRSITrend(t *testing.T) {
	up := RSI(seriestest.Trend(40, 100, 1).Closes(), 14)
	down := RSI(seriestest.Trend(40, 100, -1).Closes(), 14)
	assert.InDelta(t, 100, up[39], 1e-9)
	assert.InDelta(t, 0, down[39], 1e-9)
}

func TestBollingerFlatSeries(t *testing.T) {
	closes := seriestest.Flat(40, 0.1).Closes()
	mid, up, lo, pos := Bollinger(closes, 20, 2)
	for i := 19; i < len(closes); i++ {
		assert.Equal(t, 0.5, pos[i])
		assert.Equal(t, mid[i], up[i])
		assert.Equal(t, mid[i], lo[i])
	}
}

func TestBollingerPositionClamped(t *testing.T) {
	closes := append(seriestest.Flat(19, 100).Closes(), 1000)
	_, _, _, pos := Bollinger(closes, 20, 0.5)
	assert.Equal(t, 1.0, pos[19])
}

func TestMACDWarmUp(t *testing.T) {
	closes := seriestest.RandomWalk(80, 0, 0.01, 7).Closes()
	line, sig, hist := MACD(closes, 12, 26, 9)
	assert.True(t, math.IsNaN(line[24]))
	assert.False(t, math.IsNaN(line[25]))
	assert.True(t, math.IsNaN(sig[32]))
	assert.False(t, math.IsNaN(sig[33]))
	assert.InDelta(t, line[50]-sig[50], hist[50], 1e-12)
}

func TestStochasticFlatWindowUndefined(t *testing.T) {
	s := seriestest.Flat(30, 50)
	k, d := Stochastic(s.Closes(), s.Closes(), s.Closes(), 14, 3)
	for i := range k {
		assert.True(t, math.IsNaN(k[i]))
		assert.True(t, math.IsNaN(d[i]))
	}
}

func TestStochasticRange(t *testing.T) {
	s := seriestest.RandomWalk(120, 0, 0.02, 11)
	highs, lows := highsLows(s.Bars)
	k, _ := Stochastic(highs, lows, s.Closes(), 14, 3)
	for _, v := range k[13:] {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestVolumeRatio(t *testing.T) {
	vols := []float64{100, 100, 100, 400}
	got := VolumeRatio(vols, 4)
	assert.InDelta(t, 400/175.0, got[3], 1e-9)

	zero := VolumeRatio([]float64{0, 0, 0}, 2)
	assert.True(t, math.IsNaN(zero[2]))
}

func TestComputeAlignsWithSeries(t *testing.T) {
	s := seriestest.RandomWalk(120, 0.0005, 0.015, 3)
	snap := Compute(s, defaultConfig())
	for name, xs := range snap.Series() {
		assert.Len(t, xs, s.Len(), name)
	}
	last := snap.At(s.Len() - 1)
	for name, v := range last {
		assert.NotNil(t, v, name)
	}
	assert.Nil(t, snap.At(0)[NameRSI])
}

func TestMaxWarmUp(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 33, cfg.MaxWarmUp())
	assert.Equal(t, 19, cfg.WarmUp()[FamilyMA])
}

func TestRSIFlatSeriesIsMidpoint(t *testing.T) {
	rsi := RSI(seriestest.Flat(30, 12).Closes(), 14)
	assert.True(t, math.IsNaN(rsi[13]))
	for _, v := range rsi[14:] {
		assert.Equal(t, 50.0, v)
	}
}

func TestATRWarmUp(t *testing.T) {
	s := seriestest.RandomWalk(40, 0, 0.02, 8)
	highs, lows := highsLows(s.Bars)
	atr := ATR(highs, lows, s.Closes(), 14)
	for i, v := range atr {
		if i < 14 {
			assert.True(t, math.IsNaN(v), "bar %d", i)
			continue
		}
		assert.Greater(t, v, 0.0, "bar %d", i)
	}
	assert.True(t, math.IsNaN(ATR(highs[:14], lows[:14], s.Closes()[:14], 14)[13]))
}

func TestWilliamsRRange(t *testing.T) {
	s := seriestest.RandomWalk(60, 0, 0.02, 9)
	highs, lows := highsLows(s.Bars)
	r := WilliamsR(highs, lows, s.Closes(), 14)
	assert.True(t, math.IsNaN(r[12]))
	for _, v := range r[13:] {
		assert.GreaterOrEqual(t, v, -100.0)
		assert.LessOrEqual(t, v, 0.0)
	}
	flat := seriestest.Flat(20, 3).Closes()
	for _, v := range WilliamsR(flat, flat, flat, 14) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestOBV(t *testing.T) {
	got := OBV([]float64{10, 11, 11, 10}, []float64{100, 200, 300, 400})
	assert.Equal(t, []float64{100, 300, 300, -100}, got)
	assert.Empty(t, OBV(nil, nil))
}

func TestVPT(t *testing.T) {
	got := VPT([]float64{10, 11, 11, 10}, []float64{100, 200, 300, 400})
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 20, got[1], 1e-9)
	assert.InDelta(t, 20, got[2], 1e-9)
	assert.InDelta(t, 20-400.0/11, got[3], 1e-9)
}

func TestVolumeZScore(t *testing.T) {
	got := VolumeZScore([]float64{1, 2, 3, 4, 10}, 5)
	assert.True(t, math.IsNaN(got[3]))
	assert.InDelta(t, 6/math.Sqrt(12.5), got[4], 1e-9)

	same := VolumeZScore([]float64{500, 500, 500, 500}, 3)
	for _, v := range same {
		assert.True(t, math.IsNaN(v))
	}
}

func TestBandwidthAndSqueeze(t *testing.T) {
	bw := Bandwidth([]float64{math.NaN(), 10}, []float64{math.NaN(), 11}, []float64{math.NaN(), 9})
	assert.True(t, math.IsNaN(bw[0]))
	assert.InDelta(t, 0.2, bw[1], 1e-12)

	narrowing := make([]float64, 20)
	widening := make([]float64, 20)
	for i := range narrowing {
		narrowing[i] = float64(20 - i)
		widening[i] = float64(i + 1)
	}
	sq := Squeeze(narrowing, 20)
	assert.True(t, math.IsNaN(sq[18]))
	assert.Equal(t, 1.0, sq[19])
	assert.Equal(t, 0.0, Squeeze(widening, 20)[19])
}

func TestComputeSqueezeAt(t *testing.T) {
	s := seriestest.RandomWalk(60, 0, 0.01, 4)
	snap := Compute(s, defaultConfig())
	assert.Nil(t, snap.SqueezeAt(30))
	assert.NotNil(t, snap.SqueezeAt(59))
	assert.Nil(t, snap.SqueezeAt(60))
}

func highsLows(bars []models.PriceBar) (highs, lows []float64) {
	highs = make([]float64, len(bars))
	lows = make([]float64, len(bars))
	for i, b := range bars {
		highs[i], lows[i] = b.High, b.Low
	}
	return highs, lows
}
