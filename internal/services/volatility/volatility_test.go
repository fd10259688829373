package volatility

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/seriestest"
)

func testConfig() Config {
	return Config{Window: 20, LongWindow: 60, AnnualizationFactor: 252, LowBand: 15, HighBand: 30, ClusterBars: 5}
}

func TestLogReturns(t *testing.T) {
	got := LogReturns([]float64{100, 110, 99})
	require.Len(t, got, 2)
	assert.InDelta(t, math.Log(1.1), got[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), got[1], 1e-12)
	assert.Nil(t, LogReturns([]float64{100}))
}

func TestRealizedVolatilityInsufficient(t *testing.T) {
	assert.True(t, math.IsNaN(RealizedVolatility([]float64{0.01, 0.02}, 20, 252)))
}

func TestClassifyFlatSeries(t *testing.T) {
	res := Classify(seriestest.Flat(40, 50), testConfig())
	require.NotNil(t, res.Volatility)
	assert.Equal(t, 0.0, *res.Volatility)
	require.NotNil(t, res.Regime.CurrentRegime)
	assert.Equal(t, models.RegimeLow, *res.Regime.CurrentRegime)
	assert.Equal(t, "low", *res.Regime.RegimeDescription)
	assert.False(t, res.Regime.VolatilityCluster)
	assert.Nil(t, res.VolatilityLong)
}

func TestClassifyShortSeriesUndefined(t *testing.T) {
	res := Classify(seriestest.Trend(10, 100, 1), testConfig())
	assert.Nil(t, res.Volatility)
	assert.Nil(t, res.Regime.CurrentRegime)
	assert.Nil(t, res.Regime.RegimeDescription)
}

func TestClassifyMatchesAnnualizedSigma(t *testing.T) {
	// 2% daily moves annualize to roughly 32%
	s := seriestest.RandomWalk(400, 0, 0.02, 5)
	res := Classify(s, testConfig())
	require.NotNil(t, res.Volatility)
	assert.InDelta(t, 0.02*math.Sqrt(252)*100, *res.Volatility, 15)
	require.NotNil(t, res.VolatilityLong)
	assert.InDelta(t, 0.02*math.Sqrt(252)*100, *res.VolatilityLong, 8)
}

func TestClusterRequiresPersistence(t *testing.T) {
	cfg := testConfig()
	high := []float64{35, 40, 45, 50, 38}
	assert.True(t, cluster(high, models.RegimeHigh, cfg))

	oneSpike := []float64{10, 12, 11, 9, 45}
	assert.False(t, cluster(oneSpike, models.RegimeHigh, cfg))

	calm := []float64{5, 5, 5, 5, 5}
	assert.False(t, cluster(calm, models.RegimeLow, cfg))

	withGap := []float64{math.NaN(), 40, 40, 40, 40}
	assert.False(t, cluster(withGap, models.RegimeHigh, cfg))
}

func TestRegimeOf(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, models.RegimeLow, cfg.RegimeOf(14.9))
	assert.Equal(t, models.RegimeMedium, cfg.RegimeOf(15))
	assert.Equal(t, models.RegimeMedium, cfg.RegimeOf(29.9))
	assert.Equal(t, models.RegimeHigh, cfg.RegimeOf(30))
}

func TestPercentileOfScore(t *testing.T) {
	vals := []float64{math.NaN(), 1, 2, 3, 4}
	assert.InDelta(t, 87.5, PercentileOfScore(vals, 4), 1e-9)
	assert.InDelta(t, 50, PercentileOfScore([]float64{7, 7}, 7), 1e-9)
}
