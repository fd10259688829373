package signals

import "EquityPulse/internal/domain/models"

// DirectionalAccuracy scores defined, non-Neutral composites against the sign
// of the close-to-close move over the next horizon bars. The result is a
// percentage, or nil when no bar qualifies. A flat forward move counts as a miss.
func DirectionalAccuracy(closes []float64, c Composite, horizon int) *float64 {
	if horizon < 1 {
		horizon = 1
	}
	hits, total := 0, 0
	for t := 0; t+horizon < len(closes) && t < len(c.Bars); t++ {
		b := c.Bars[t]
		if !b.Defined || b.Composite == models.Neutral {
			continue
		}
		total++
		if models.SignalFromSign(closes[t+horizon]-closes[t]) == b.Composite {
			hits++
		}
	}
	if total == 0 {
		return nil
	}
	return models.Float(100 * float64(hits) / float64(total))
}

// Summary converts a composite into the report view.
func Summary(c Composite, accuracy *float64, indicatorsAtLatest map[string]*float64) models.SignalSummary {
	breakdown := c.Breakdown
	if breakdown == nil {
		breakdown = map[string]models.Signal{}
	}
	if indicatorsAtLatest == nil {
		indicatorsAtLatest = map[string]*float64{}
	}
	return models.SignalSummary{
		LatestSignal:        c.Latest,
		SignalBreakdown:     breakdown,
		DirectionalAccuracy: accuracy,
		TechnicalIndicators: indicatorsAtLatest,
	}
}
