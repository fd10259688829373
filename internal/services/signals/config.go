package signals

import (
	"fmt"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/indicators"
)

// Weights of each family in the composite sum.
type Weights struct {
	RSI        float64 `yaml:"rsi" json:"rsi" default:"1" validate:"gte=0"`
	MACD       float64 `yaml:"macd" json:"macd" default:"1" validate:"gte=0"`
	Bollinger  float64 `yaml:"bollinger" json:"bollinger" default:"1" validate:"gte=0"`
	MA         float64 `yaml:"ma" json:"ma" default:"1" validate:"gte=0"`
	Stochastic float64 `yaml:"stochastic" json:"stochastic" default:"1" validate:"gte=0"`
}

func (w Weights) of(family string) float64 {
	switch family {
	case indicators.FamilyRSI:
		return w.RSI
	case indicators.FamilyMACD:
		return w.MACD
	case indicators.FamilyBollinger:
		return w.Bollinger
	case indicators.FamilyMA:
		return w.MA
	case indicators.FamilyStochastic:
		return w.Stochastic
	}
	return 0
}

// Config holds sub-signal thresholds, composite weights and the backtest horizon.
type Config struct {
	RSIOversold        float64 `yaml:"rsi_oversold" json:"rsi_oversold" default:"30" validate:"gte=0,lt=100"`
	RSIOverbought      float64 `yaml:"rsi_overbought" json:"rsi_overbought" default:"70" validate:"gtfield=RSIOversold,lte=100"`
	BBLower            float64 `yaml:"bb_lower" json:"bb_lower" default:"0.1" validate:"gte=0,lt=1"`
	BBUpper            float64 `yaml:"bb_upper" json:"bb_upper" default:"0.9" validate:"gtfield=BBLower,lte=1"`
	StochOversold      float64 `yaml:"stoch_oversold" json:"stoch_oversold" default:"20" validate:"gte=0,lt=100"`
	StochOverbought    float64 `yaml:"stoch_overbought" json:"stoch_overbought" default:"80" validate:"gtfield=StochOversold,lte=100"`
	Weights            Weights `yaml:"weights" json:"weights"`
	DeadBand           float64 `yaml:"dead_band" json:"dead_band" validate:"gte=0"`
	VolumeConfirmRatio float64 `yaml:"volume_confirm_ratio" json:"volume_confirm_ratio" default:"1.5" validate:"gt=0"`
	Horizon            int     `yaml:"horizon" json:"horizon" default:"1" validate:"gte=1"`
}

// Check enforces rules struct tags cannot express.
func (c Config) Check() error {
	total := 0.0
	for _, f := range Families {
		total += c.Weights.of(f)
	}
	if total <= 0 {
		return fmt.Errorf("%w: signal weights must not all be zero", models.ErrConfiguration)
	}
	return nil
}
