package risk

import (
	"math"
	"testing"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/seriestest"
)

func defaultConfig(t *testing.T) Config {
	t.Helper()
	var cfg Config
	require.NoError(t, defaults.Set(&cfg))
	return cfg
}

func TestPercentileInterpolates(t *testing.T) {
	xs := []float64{4, 1, 3, 2, 5}
	assert.Equal(t, 1.0, Percentile(xs, 0))
	assert.Equal(t, 5.0, Percentile(xs, 1))
	assert.InDelta(t, 3.0, Percentile(xs, 0.5), 1e-12)
	assert.InDelta(t, 1.2, Percentile(xs, 0.05), 1e-12)
	assert.True(t, math.IsNaN(Percentile(nil, 0.5)))
}

func TestComputeFlatSeries(t *testing.T) {
	m := Compute(seriestest.Flat(60, 25), defaultConfig(t))

	require.NotNil(t, m.ValueAtRisk)
	assert.Equal(t, 0.0, *m.ValueAtRisk)
	assert.False(t, math.Signbit(*m.ValueAtRisk))
	require.NotNil(t, m.ExpectedShortfall)
	assert.Equal(t, 0.0, *m.ExpectedShortfall)
	assert.Nil(t, m.Sharpe)
	assert.Nil(t, m.Sortino)
	require.NotNil(t, m.MaxDrawdown)
	assert.Equal(t, 0.0, *m.MaxDrawdown)
}

func TestComputeBelowMinBars(t *testing.T) {
	m := Compute(seriestest.Trend(10, 10, 1), defaultConfig(t))

	assert.Nil(t, m.ValueAtRisk)
	assert.Nil(t, m.ExpectedShortfall)
	assert.Nil(t, m.Sharpe)
	assert.Nil(t, m.Sortino)
	require.NotNil(t, m.MaxDrawdown)
	assert.Equal(t, 0.0, *m.MaxDrawdown)
}

func TestComputeIIDReturns(t *testing.T) {
	const mu, sigma = 0.001, 0.02
	cfg := defaultConfig(t)
	series := seriestest.RandomWalk(253, mu, sigma, 42)
	rets := seriestest.Returns(series)
	require.Len(t, rets, 252)

	m := Compute(series, cfg)
	require.NotNil(t, m.ValueAtRisk)
	require.NotNil(t, m.ExpectedShortfall)
	require.NotNil(t, m.Sharpe)
	require.NotNil(t, m.Sortino)

	theoreticalVaR := -100 * (mu - 1.6449*sigma)
	assert.InDelta(t, theoreticalVaR, *m.ValueAtRisk, 1.0)
	assert.GreaterOrEqual(t, *m.ExpectedShortfall, *m.ValueAtRisk)

	mean, sd := stat.MeanStdDev(rets, nil)
	sample := (mean - cfg.RiskFreeRate/252) / sd * math.Sqrt(252)
	assert.InDelta(t, sample, *m.Sharpe, 1e-9)
	theoretical := (mu - cfg.RiskFreeRate/252) / sigma * math.Sqrt(252)
	assert.InDelta(t, theoretical, *m.Sharpe, 3.5)
}

func TestComputeUsesTrailingWindow(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Window = 30
	series := seriestest.RandomWalk(200, 0, 0.01, 7)

	full := Compute(series, cfg)
	tail := Compute(models.OHLCVSeries{Ticker: series.Ticker, Bars: series.Bars[len(series.Bars)-31:]}, cfg)

	assert.Equal(t, *tail.ValueAtRisk, *full.ValueAtRisk)
	assert.Equal(t, *tail.Sharpe, *full.Sharpe)
}

func TestMaxDrawdown(t *testing.T) {
	closes := []float64{100, 120, 90, 110, 60, 130, 125}
	assert.InDelta(t, -0.5, MaxDrawdown(closes), 1e-12)

	prev := 0.0
	for i := 1; i <= len(closes); i++ {
		dd := MaxDrawdown(closes[:i])
		assert.LessOrEqual(t, dd, 0.0)
		assert.LessOrEqual(t, dd, prev)
		prev = dd
	}
}

func TestMaxDrawdownNeverPositive(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		m := Compute(seriestest.RandomWalk(120, 0.002, 0.03, seed), defaultConfig(t))
		require.NotNil(t, m.MaxDrawdown)
		assert.LessOrEqual(t, *m.MaxDrawdown, 0.0)
	}
}

func TestRelativeLeveragedSeries(t *testing.T) {
	cfg := defaultConfig(t)
	bench := seriestest.RandomWalk(80, 0, 0.01, 3)
	bench.Ticker = "^GSPTSE"

	closes := []float64{50}
	for _, r := range seriestest.Returns(bench) {
		closes = append(closes, closes[len(closes)-1]*(1+2*r))
	}
	asset := seriestest.FromCloses(closes, 1000)

	rel := Relative(asset, bench, cfg)
	require.NotNil(t, rel)
	assert.Equal(t, "^GSPTSE", rel.Benchmark)
	assert.Equal(t, 80, rel.CommonDays)
	require.NotNil(t, rel.Beta)
	assert.InDelta(t, 2.0, *rel.Beta, 1e-9)
	require.NotNil(t, rel.Correlation)
	assert.InDelta(t, 1.0, *rel.Correlation, 1e-9)
	assert.NotNil(t, rel.ExcessReturnPct)
	assert.NotNil(t, rel.InformationRatio)
}

func TestRelativeSelfAndOverlap(t *testing.T) {
	cfg := defaultConfig(t)
	series := seriestest.RandomWalk(60, 0, 0.01, 9)

	self := Relative(series, series, cfg)
	require.NotNil(t, self)
	assert.InDelta(t, 0.0, *self.ExcessReturnPct, 1e-12)
	assert.Nil(t, self.InformationRatio)

	short := models.OHLCVSeries{Ticker: "B", Bars: series.Bars[:15]}
	rel := Relative(series, short, cfg)
	require.NotNil(t, rel)
	assert.Equal(t, 15, rel.CommonDays)
	assert.Nil(t, rel.Beta)

	assert.Nil(t, Relative(series, models.OHLCVSeries{}, cfg))
}

func TestRelativeReturnsAndAlpha(t *testing.T) {
	cfg := defaultConfig(t)
	bench := seriestest.RandomWalk(80, 0, 0.01, 3)
	rb := seriestest.Returns(bench)

	closes := []float64{50}
	for _, r := range rb {
		closes = append(closes, closes[len(closes)-1]*(1+2*r))
	}
	levered := Relative(seriestest.FromCloses(closes, 1000), bench, cfg)
	require.NotNil(t, levered)

	var sum20, sum60 float64
	for _, r := range rb[len(rb)-20:] {
		sum20 += r
	}
	for _, r := range rb[len(rb)-60:] {
		sum60 += r
	}
	require.NotNil(t, levered.RelativeReturn20)
	assert.InDelta(t, 100*sum20, *levered.RelativeReturn20, 1e-9)
	require.NotNil(t, levered.RelativeReturn60)
	assert.InDelta(t, 100*sum60, *levered.RelativeReturn60, 1e-9)
	// With beta 2 and no idiosyncratic return, alpha is the risk-free rate.
	require.NotNil(t, levered.Alpha)
	assert.InDelta(t, 100*cfg.RiskFreeRate, *levered.Alpha, 1e-6)

	self := Relative(bench, bench, cfg)
	require.NotNil(t, self)
	assert.InDelta(t, 0.0, *self.RelativeReturn20, 1e-12)
	assert.InDelta(t, 0.0, *self.Alpha, 1e-9)

	short := seriestest.RandomWalk(50, 0, 0.01, 4)
	rel := Relative(short, short, cfg)
	require.NotNil(t, rel)
	assert.NotNil(t, rel.RelativeReturn20)
	assert.Nil(t, rel.RelativeReturn60)
}

func TestRelativeFlatBenchmarkHasNoAlpha(t *testing.T) {
	cfg := defaultConfig(t)
	rel := Relative(seriestest.RandomWalk(40, 0, 0.01, 5), seriestest.Flat(40, 100), cfg)
	require.NotNil(t, rel)
	assert.Nil(t, rel.Beta)
	assert.Nil(t, rel.Alpha)
}
