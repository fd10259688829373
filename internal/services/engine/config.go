package engine

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/attention"
	"EquityPulse/internal/services/indicators"
	"EquityPulse/internal/services/liquidity"
	"EquityPulse/internal/services/risk"
	"EquityPulse/internal/services/signals"
	"EquityPulse/internal/services/volatility"
)

// Config is the complete, immutable analysis configuration.
type Config struct {
	// MinBars is the shortest series the engine accepts at all. Individual
	// metrics with longer windows report null instead of failing.
	MinBars    int               `yaml:"min_bars" json:"min_bars" default:"2" validate:"gte=2"`
	Indicators indicators.Config `yaml:"indicators" json:"indicators"`
	Signals    signals.Config    `yaml:"signals" json:"signals"`
	Volatility volatility.Config `yaml:"volatility" json:"volatility"`
	Risk       risk.Config       `yaml:"risk" json:"risk"`
	Liquidity  liquidity.Config  `yaml:"liquidity" json:"liquidity"`
	Attention  attention.Config  `yaml:"attention" json:"attention"`
}

var validate = validator.New()

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(fmt.Sprintf("engine defaults: %v", err))
	}
	return cfg
}

// Validate reports inconsistent settings as ErrConfiguration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	if err := c.Signals.Check(); err != nil {
		return err
	}
	if err := c.Liquidity.Check(); err != nil {
		return fmt.Errorf("%w: liquidity weights must not both be zero", err)
	}
	return nil
}

// WithOverrides returns a copy of c with every set override applied.
// The result still needs validating.
func (c Config) WithOverrides(o models.Overrides) Config {
	if o.RSIPeriod > 0 {
		c.Indicators.RSIPeriod = o.RSIPeriod
	}
	if o.MAShort > 0 {
		c.Indicators.MAShort = o.MAShort
	}
	if o.MALong > 0 {
		c.Indicators.MALong = o.MALong
	}
	if o.BacktestHorizon > 0 {
		c.Signals.Horizon = o.BacktestHorizon
	}
	if o.VaRConfidence > 0 {
		c.Risk.Confidence = o.VaRConfidence
	}
	if o.VaRWindow > 0 {
		c.Risk.Window = o.VaRWindow
		if c.Risk.MinBars > o.VaRWindow {
			c.Risk.MinBars = o.VaRWindow
		}
	}
	if o.RiskFreeRate != nil {
		c.Risk.RiskFreeRate = *o.RiskFreeRate
	}
	if o.LowVolBand > 0 {
		c.Volatility.LowBand = o.LowVolBand
	}
	if o.HighVolBand > 0 {
		c.Volatility.HighBand = o.HighVolBand
	}
	return c
}
