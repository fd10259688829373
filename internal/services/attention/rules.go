// Package attention flags reports that deserve a closer look.
//
// Rules are independent predicates, each carrying a severity. Every rule is
// evaluated on every report so the triggered list is always complete.
package attention

import (
	"math"

	"EquityPulse/internal/domain/models"
)

// Config holds rule thresholds. Percent units throughout.
type Config struct {
	HighVolatility      float64 `yaml:"high_volatility" json:"high_volatility" default:"40" validate:"gtfield=ElevatedVolatility"`
	ElevatedVolatility  float64 `yaml:"elevated_volatility" json:"elevated_volatility" default:"30" validate:"gt=0"`
	VolumeSpike         float64 `yaml:"volume_spike" json:"volume_spike" default:"3" validate:"gt=1"`
	LargeMove           float64 `yaml:"large_move" json:"large_move" default:"10" validate:"gtfield=Move"`
	Move                float64 `yaml:"move" json:"move" default:"5" validate:"gt=0"`
	WideSpread          float64 `yaml:"wide_spread" json:"wide_spread" default:"5" validate:"gt=0"`
	LowLiquidity        float64 `yaml:"low_liquidity" json:"low_liquidity" default:"30" validate:"gte=0,lte=100"`
	SignificantDrawdown float64 `yaml:"significant_drawdown" json:"significant_drawdown" default:"-20" validate:"ltfield=Drawdown"`
	Drawdown            float64 `yaml:"drawdown" json:"drawdown" default:"-15" validate:"lt=0"`
	ConfluenceFactors   int     `yaml:"confluence_factors" json:"confluence_factors" default:"2" validate:"gte=1,lte=3"`
}

// Inputs is everything the rules may look at. Nil pointers never trigger.
type Inputs struct {
	Latest         *models.Signal
	Regime         models.VolatilityRegime
	Volatility     *float64
	DailyChangePct *float64
	DailyRangePct  *float64
	VolumeRatio    *float64
	LiquidityScore *float64
	MaxDrawdown    *float64
}

// Rule is one named predicate.
type Rule struct {
	ID       string
	Severity models.Severity
	When     func(Inputs) bool
}

// Rule identifiers.
const (
	RuleHighVolatility       = "high_volatility"
	RuleElevatedVolatility   = "elevated_volatility"
	RuleVolumeSpike          = "volume_spike"
	RuleLargePriceMove       = "large_price_move"
	RulePriceMove            = "price_move"
	RuleWideSpread           = "wide_spread"
	RuleLowLiquidity         = "low_liquidity"
	RuleSignificantDrawdown  = "significant_drawdown"
	RuleDrawdown             = "drawdown"
	RuleRiskConfluence       = "risk_confluence"
	RuleSustainedVolatility  = "sustained_high_volatility"
	RuleSellInHighVolatility = "sell_signal_high_volatility"
)

func above(p *float64, limit float64) bool { return p != nil && *p > limit }

func below(p *float64, limit float64) bool { return p != nil && *p < limit }

func absAbove(p *float64, limit float64) bool { return p != nil && math.Abs(*p) > limit }

func highRegime(in Inputs) bool {
	return in.Regime.CurrentRegime != nil && *in.Regime.CurrentRegime == models.RegimeHigh
}

// DefaultRules builds the standard rule set from cfg.
func DefaultRules(cfg Config) []Rule {
	return []Rule{
		{RuleHighVolatility, models.SeverityHigh, func(in Inputs) bool {
			return above(in.Volatility, cfg.HighVolatility)
		}},
		{RuleElevatedVolatility, models.SeverityMedium, func(in Inputs) bool {
			return above(in.Volatility, cfg.ElevatedVolatility)
		}},
		{RuleVolumeSpike, models.SeverityLow, func(in Inputs) bool {
			return above(in.VolumeRatio, cfg.VolumeSpike)
		}},
		{RuleLargePriceMove, models.SeverityHigh, func(in Inputs) bool {
			return absAbove(in.DailyChangePct, cfg.LargeMove)
		}},
		{RulePriceMove, models.SeverityMedium, func(in Inputs) bool {
			return absAbove(in.DailyChangePct, cfg.Move)
		}},
		{RuleWideSpread, models.SeverityLow, func(in Inputs) bool {
			return above(in.DailyRangePct, cfg.WideSpread)
		}},
		{RuleLowLiquidity, models.SeverityLow, func(in Inputs) bool {
			return below(in.LiquidityScore, cfg.LowLiquidity)
		}},
		{RuleSignificantDrawdown, models.SeverityHigh, func(in Inputs) bool {
			return below(in.MaxDrawdown, cfg.SignificantDrawdown)
		}},
		{RuleDrawdown, models.SeverityMedium, func(in Inputs) bool {
			return below(in.MaxDrawdown, cfg.Drawdown)
		}},
		{RuleRiskConfluence, models.SeverityHigh, func(in Inputs) bool {
			n := 0
			for _, hit := range []bool{
				above(in.Volatility, cfg.ElevatedVolatility),
				absAbove(in.DailyChangePct, cfg.Move),
				below(in.MaxDrawdown, cfg.Drawdown),
			} {
				if hit {
					n++
				}
			}
			return n >= cfg.ConfluenceFactors
		}},
		{RuleSustainedVolatility, models.SeverityMedium, func(in Inputs) bool {
			return highRegime(in) && in.Regime.VolatilityCluster
		}},
		{RuleSellInHighVolatility, models.SeverityMedium, func(in Inputs) bool {
			return highRegime(in) && in.Latest != nil && *in.Latest == models.Sell
		}},
	}
}

// Evaluate runs every rule against in. Triggered identifiers keep rule order.
func Evaluate(in Inputs, rules []Rule) models.AttentionFlags {
	flags := models.AttentionFlags{RiskLevel: models.SeverityLow, TriggeredReasons: []string{}}
	for _, r := range rules {
		if !r.When(in) {
			continue
		}
		flags.TriggeredReasons = append(flags.TriggeredReasons, r.ID)
		flags.RequiresAttention = true
		if r.Severity > flags.RiskLevel {
			flags.RiskLevel = r.Severity
		}
	}
	return flags
}
