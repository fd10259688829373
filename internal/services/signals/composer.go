package signals

import (
	"math"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/indicators"
)

// Families lists the voting families in a fixed order.
var Families = []string{
	indicators.FamilyRSI,
	indicators.FamilyMACD,
	indicators.FamilyBollinger,
	indicators.FamilyMA,
	indicators.FamilyStochastic,
}

// FamilyVolume is reported in the breakdown but never votes.
const FamilyVolume = "volume"

// Bar is the signal state of a single bar.
type Bar struct {
	Defined   bool
	Subs      map[string]models.Signal
	Score     float64
	Composite models.Signal
}

// Composite is the per-bar signal history plus the latest call. Breakdown
// always describes the last bar: families still in warm-up vote Neutral there,
// while Latest stays nil until every family is defined.
type Composite struct {
	Bars        []Bar
	LatestIndex int
	Latest      *models.Signal
	Breakdown   map[string]models.Signal
}

// SubSignals maps the indicator values at bar i to one call per family.
// Undefined inputs vote Neutral.
func SubSignals(s indicators.Snapshot, i int, cfg Config) map[string]models.Signal {
	subs := make(map[string]models.Signal, len(Families))

	subs[indicators.FamilyRSI] = band(s.RSI[i], cfg.RSIOversold, cfg.RSIOverbought)
	subs[indicators.FamilyMACD] = models.Neutral
	if h := s.MACDHist[i]; !math.IsNaN(h) {
		subs[indicators.FamilyMACD] = models.SignalFromSign(h)
	}
	subs[indicators.FamilyBollinger] = band(s.BBPosition[i], cfg.BBLower, cfg.BBUpper)
	subs[indicators.FamilyMA] = models.Neutral
	if short, long := s.MAShort[i], s.MALong[i]; !math.IsNaN(short) && !math.IsNaN(long) {
		subs[indicators.FamilyMA] = models.SignalFromSign(short - long)
	}
	subs[indicators.FamilyStochastic] = band(s.StochK[i], cfg.StochOversold, cfg.StochOverbought)
	return subs
}

// band reads an oscillator: below lo is Buy, above hi is Sell.
func band(v, lo, hi float64) models.Signal {
	switch {
	case math.IsNaN(v):
		return models.Neutral
	case v < lo:
		return models.Buy
	case v > hi:
		return models.Sell
	}
	return models.Neutral
}

// Combine turns sub-signals into the weighted score and its composite call.
// A score inside the dead band, including an exact tie, is Neutral.
func Combine(subs map[string]models.Signal, cfg Config) (float64, models.Signal) {
	score := 0.0
	for _, f := range Families {
		score += cfg.Weights.of(f) * float64(subs[f].Int())
	}
	switch {
	case score > cfg.DeadBand:
		return score, models.Buy
	case score < -cfg.DeadBand:
		return score, models.Sell
	}
	return score, models.Neutral
}

// Compose evaluates every bar. Bar t only reads indicator values at t, which
// are themselves computed from bars up to t.
func Compose(s indicators.Snapshot, icfg indicators.Config, cfg Config) Composite {
	n := s.Len()
	warm := icfg.MaxWarmUp()
	out := Composite{Bars: make([]Bar, n), LatestIndex: -1}
	for i := 0; i < n; i++ {
		subs := SubSignals(s, i, cfg)
		score, comp := Combine(subs, cfg)
		out.Bars[i] = Bar{Defined: i >= warm, Subs: subs, Score: score, Composite: comp}
		if i >= warm {
			out.LatestIndex = i
		}
	}
	if n == 0 {
		return out
	}
	last := out.Bars[n-1]
	out.Breakdown = make(map[string]models.Signal, len(last.Subs)+1)
	for k, v := range last.Subs {
		out.Breakdown[k] = v
	}
	out.Breakdown[FamilyVolume] = models.Neutral
	if out.LatestIndex == n-1 {
		latest := last.Composite
		out.Latest = &latest
		out.Breakdown[FamilyVolume] = volumeConfirmation(s.VolumeRatio[n-1], latest, cfg)
	}
	return out
}

// volumeConfirmation echoes the composite when volume is elevated.
func volumeConfirmation(ratio float64, composite models.Signal, cfg Config) models.Signal {
	if math.IsNaN(ratio) || ratio < cfg.VolumeConfirmRatio {
		return models.Neutral
	}
	return composite
}
