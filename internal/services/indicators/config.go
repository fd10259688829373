package indicators

// Config holds indicator windows. Defaults follow common charting conventions;
// the moving averages use a 5/20 crossover.
type Config struct {
	RSIPeriod      int     `yaml:"rsi_period" json:"rsi_period" default:"14" validate:"gte=2"`
	MACDFast       int     `yaml:"macd_fast" json:"macd_fast" default:"12" validate:"gte=1"`
	MACDSlow       int     `yaml:"macd_slow" json:"macd_slow" default:"26" validate:"gtfield=MACDFast"`
	MACDSignal     int     `yaml:"macd_signal" json:"macd_signal" default:"9" validate:"gte=1"`
	BBPeriod       int     `yaml:"bb_period" json:"bb_period" default:"20" validate:"gte=2"`
	BBStdDev       float64 `yaml:"bb_std_dev" json:"bb_std_dev" default:"2" validate:"gt=0"`
	MAShort        int     `yaml:"ma_short" json:"ma_short" default:"5" validate:"gte=1"`
	MALong         int     `yaml:"ma_long" json:"ma_long" default:"20" validate:"gtfield=MAShort"`
	StochK         int     `yaml:"stoch_k" json:"stoch_k" default:"14" validate:"gte=2"`
	StochD         int     `yaml:"stoch_d" json:"stoch_d" default:"3" validate:"gte=1"`
	VolumePeriod   int     `yaml:"volume_period" json:"volume_period" default:"20" validate:"gte=1"`
	ATRPeriod      int     `yaml:"atr_period" json:"atr_period" default:"14" validate:"gte=1"`
	WilliamsPeriod int     `yaml:"williams_period" json:"williams_period" default:"14" validate:"gte=2"`
	SqueezeWindow  int     `yaml:"squeeze_window" json:"squeeze_window" default:"20" validate:"gte=10"`
}

// Signal families fed by the indicators.
const (
	FamilyRSI        = "rsi"
	FamilyMACD       = "macd"
	FamilyBollinger  = "bollinger"
	FamilyMA         = "ma"
	FamilyStochastic = "stochastic"
)

// WarmUp returns, per signal family, the first bar index with a defined value.
func (c Config) WarmUp() map[string]int {
	return map[string]int{
		FamilyRSI:        c.RSIPeriod,
		FamilyMACD:       c.MACDSlow - 1 + c.MACDSignal - 1,
		FamilyBollinger:  c.BBPeriod - 1,
		FamilyMA:         c.MALong - 1,
		FamilyStochastic: c.StochK - 1,
	}
}

// MaxWarmUp is the first bar index at which every family is past warm-up.
func (c Config) MaxWarmUp() int {
	m := 0
	for _, w := range c.WarmUp() {
		if w > m {
			m = w
		}
	}
	return m
}
