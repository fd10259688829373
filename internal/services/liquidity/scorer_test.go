package liquidity

import (
	"math"
	"testing"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/seriestest"
)

func defaultConfig(t *testing.T) Config {
	t.Helper()
	var cfg Config
	require.NoError(t, defaults.Set(&cfg))
	return cfg
}

func TestScoreSteadyUptrend(t *testing.T) {
	m := Score(seriestest.Trend(30, 10, 0.5), defaultConfig(t))

	require.NotNil(t, m.LiquidityScore)
	assert.Equal(t, 100.0, *m.LiquidityScore)
	require.NotNil(t, m.SpreadProxy)
	assert.Equal(t, 0.0, *m.SpreadProxy)
	assert.Equal(t, 1000.0, *m.AvgVolume20d)
	assert.InDelta(t, 24.5*1000, *m.DollarVolume, 1e-9)
	require.NotNil(t, m.VWAP20d)
	assert.InDelta(t, 19.75, *m.VWAP20d, 1e-9)
}

func TestScoreBounds(t *testing.T) {
	cfg := defaultConfig(t)
	for seed := int64(1); seed <= 10; seed++ {
		m := Score(seriestest.RandomWalk(150, 0, 0.02, seed), cfg)
		require.NotNil(t, m.LiquidityScore)
		assert.GreaterOrEqual(t, *m.LiquidityScore, 0.0)
		assert.LessOrEqual(t, *m.LiquidityScore, 100.0)
		assert.Greater(t, *m.SpreadProxy, 0.0)
	}
}

func TestScoreZeroVolume(t *testing.T) {
	s := seriestest.FromCloses(seriestest.Trend(25, 10, 0.1).Closes(), 0)
	m := Score(s, defaultConfig(t))

	require.NotNil(t, m.LiquidityScore)
	assert.Equal(t, 50.0, *m.LiquidityScore)
	assert.Nil(t, m.VWAP20d)
	assert.Equal(t, 0.0, *m.DollarVolume)
}

func TestScoreWideningSpreadLowersScore(t *testing.T) {
	s := seriestest.Flat(60, 50)
	bars := append([]models.PriceBar(nil), s.Bars...)
	for i := 40; i < len(bars); i++ {
		bars[i].High = 50 * (1 + 0.01*float64(i-39))
		bars[i].Low = 50 * (1 - 0.01*float64(i-39))
		bars[i].Volume = 500
	}
	m := Score(models.OHLCVSeries{Ticker: "W", Bars: bars}, defaultConfig(t))

	require.NotNil(t, m.LiquidityScore)
	assert.Less(t, *m.LiquidityScore, 10.0)
}

func TestScoreShortSeries(t *testing.T) {
	m := Score(seriestest.Flat(10, 5), defaultConfig(t))
	assert.Equal(t, models.LiquidityMetrics{}, m)
}

func TestCheck(t *testing.T) {
	cfg := defaultConfig(t)
	assert.NoError(t, cfg.Check())
	cfg.VolumeWeight, cfg.SpreadWeight = 0, 0
	assert.ErrorIs(t, cfg.Check(), models.ErrConfiguration)
}

func TestScoreSpreadAndVWAPMeasures(t *testing.T) {
	widening := seriestest.Flat(60, 50)
	for i := 40; i < len(widening.Bars); i++ {
		widening.Bars[i].High = 50 * (1 + 0.01*float64(i-39))
		widening.Bars[i].Low = 50 * (1 - 0.01*float64(i-39))
	}

	tests := []struct {
		name                 string
		series               models.OHLCVSeries
		priceVsVWAP          float64
		spreadVol, spreadPct float64
	}{
		{"steady uptrend", seriestest.Trend(30, 10, 0.5), (24.5 - 19.75) / 19.75 * 100, 0, 50},
		// Spreads of the last 20 bars are 2%, 4%, ... 40%.
		{"widening spread", widening, 0, 2 * math.Sqrt(35), 100 * 59.5 / 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Score(tt.series, defaultConfig(t))
			require.NotNil(t, m.PriceVsVWAP)
			assert.InDelta(t, tt.priceVsVWAP, *m.PriceVsVWAP, 1e-9)
			require.NotNil(t, m.SpreadVolatility)
			assert.InDelta(t, tt.spreadVol, *m.SpreadVolatility, 1e-9)
			require.NotNil(t, m.SpreadPercentile)
			assert.InDelta(t, tt.spreadPct, *m.SpreadPercentile, 1e-9)
		})
	}
}
