package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/indicators"
	"EquityPulse/internal/services/seriestest"
)

func indicatorConfig() indicators.Config {
	return indicators.Config{
		RSIPeriod: 14, MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		BBPeriod: 20, BBStdDev: 2, MAShort: 5, MALong: 10,
		StochK: 14, StochD: 3, VolumePeriod: 20, ATRPeriod: 14, WilliamsPeriod: 14,
	}
}

func signalConfig() Config {
	return Config{
		RSIOversold: 30, RSIOverbought: 70,
		BBLower: 0.1, BBUpper: 0.9,
		StochOversold: 20, StochOverbought: 80,
		Weights:            Weights{RSI: 1, MACD: 1, Bollinger: 1, MA: 1, Stochastic: 1},
		VolumeConfirmRatio: 1.5,
		Horizon:            1,
	}
}

func TestCombine(t *testing.T) {
	cfg := signalConfig()
	tests := []struct {
		name     string
		subs     map[string]models.Signal
		expected models.Signal
	}{
		{
			name: "majority buy",
			subs: map[string]models.Signal{
				indicators.FamilyRSI: models.Buy, indicators.FamilyMACD: models.Buy, indicators.FamilyMA: models.Sell,
			},
			expected: models.Buy,
		},
		{
			name: "exact tie is neutral",
			subs: map[string]models.Signal{
				indicators.FamilyRSI: models.Buy, indicators.FamilyMACD: models.Sell,
			},
			expected: models.Neutral,
		},
		{
			name:     "missing families are neutral",
			subs:     map[string]models.Signal{},
			expected: models.Neutral,
		},
		{
			name: "majority sell",
			subs: map[string]models.Signal{
				indicators.FamilyBollinger: models.Sell, indicators.FamilyStochastic: models.Sell,
			},
			expected: models.Sell,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Combine(tt.subs, cfg)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCombineWeightsAndDeadBand(t *testing.T) {
	cfg := signalConfig()
	cfg.Weights.RSI = 3
	subs := map[string]models.Signal{indicators.FamilyRSI: models.Buy, indicators.FamilyMACD: models.Sell, indicators.FamilyMA: models.Sell}
	score, got := Combine(subs, cfg)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, models.Buy, got)

	cfg.DeadBand = 1
	_, got = Combine(subs, cfg)
	assert.Equal(t, models.Neutral, got)
}

func TestComposeUptrend(t *testing.T) {
	s := seriestest.Trend(30, 100, 1)
	icfg := indicatorConfig()
	icfg.MACDSlow, icfg.MACDFast, icfg.MACDSignal = 12, 5, 3
	snap := indicators.Compute(s, icfg)
	c := Compose(snap, icfg, signalConfig())

	require.NotNil(t, c.Latest)
	assert.Equal(t, 29, c.LatestIndex)
	assert.Equal(t, models.Buy, c.Breakdown[indicators.FamilyMA])
	assert.Equal(t, models.Sell, c.Breakdown[indicators.FamilyRSI])
	assert.Equal(t, models.Neutral, c.Breakdown[FamilyVolume])
}

func TestComposeShortSeriesHasNoLatest(t *testing.T) {
	s := seriestest.Trend(8, 100, 1)
	icfg := indicatorConfig()
	c := Compose(indicators.Compute(s, icfg), icfg, signalConfig())
	assert.Nil(t, c.Latest)
	assert.Equal(t, -1, c.LatestIndex)
	assert.Nil(t, DirectionalAccuracy(s.Closes(), c, 1))
	require.Len(t, c.Breakdown, len(Families)+1)
	for family, sig := range c.Breakdown {
		assert.Equal(t, models.Neutral, sig, family)
	}
}

func TestComposeBreakdownDuringWarmUp(t *testing.T) {
	s := seriestest.Trend(30, 100, 1)
	icfg := indicatorConfig()
	icfg.MAShort, icfg.MALong = 5, 20
	c := Compose(indicators.Compute(s, icfg), icfg, signalConfig())

	// MACD needs 34 bars, so no bar is fully defined yet
	assert.Nil(t, c.Latest)
	assert.Equal(t, models.Buy, c.Breakdown[indicators.FamilyMA])
	assert.Equal(t, models.Sell, c.Breakdown[indicators.FamilyRSI])
	assert.Equal(t, models.Neutral, c.Breakdown[indicators.FamilyMACD])
	assert.Equal(t, models.Neutral, c.Breakdown[FamilyVolume])
}

func TestComposeHasNoLookAhead(t *testing.T) {
	s := seriestest.RandomWalk(200, 0, 0.02, 42)
	icfg := indicatorConfig()
	cfg := signalConfig()
	full := Compose(indicators.Compute(s, icfg), icfg, cfg)

	for _, cut := range []int{60, 100, 150} {
		trunc := models.OHLCVSeries{Ticker: s.Ticker, Bars: s.Bars[:cut]}
		part := Compose(indicators.Compute(trunc, icfg), icfg, cfg)
		for i := 0; i < cut; i++ {
			assert.Equal(t, full.Bars[i].Composite, part.Bars[i].Composite, "bar %d with cut %d", i, cut)
		}
	}
}

func TestDirectionalAccuracyNearChanceOnRandomWalk(t *testing.T) {
	s := seriestest.RandomWalk(2000, 0, 0.01, 99)
	icfg := indicatorConfig()
	c := Compose(indicators.Compute(s, icfg), icfg, signalConfig())
	acc := DirectionalAccuracy(s.Closes(), c, 1)
	require.NotNil(t, acc)
	assert.Greater(t, *acc, 40.0)
	assert.Less(t, *acc, 60.0)
}

func TestDirectionalAccuracyCountsOnlyDirectionalBars(t *testing.T) {
	closes := []float64{10, 11, 10, 12, 12}
	c := Composite{Bars: []Bar{
		{Defined: false, Composite: models.Buy},
		{Defined: true, Composite: models.Sell},    // 11 -> 10 hit
		{Defined: true, Composite: models.Neutral}, // excluded
		{Defined: true, Composite: models.Sell},    // 12 -> 12 flat miss
		{Defined: true, Composite: models.Buy},     // no forward bar
	}}
	acc := DirectionalAccuracy(closes, c, 1)
	require.NotNil(t, acc)
	assert.InDelta(t, 50.0, *acc, 1e-9)
}

func TestConfigCheck(t *testing.T) {
	cfg := signalConfig()
	assert.NoError(t, cfg.Check())
	cfg.Weights = Weights{}
	assert.ErrorIs(t, cfg.Check(), models.ErrConfiguration)
}
