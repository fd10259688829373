package indicators

import (
	"math"

	"EquityPulse/internal/domain/models"
)

// Indicator names as they appear in reports.
const (
	NameRSI         = "rsi"
	NameMACD        = "macd"
	NameMACDSignal  = "macd_signal"
	NameMACDHist    = "macd_histogram"
	NameBBUpper     = "bb_upper"
	NameBBMiddle    = "bb_middle"
	NameBBLower     = "bb_lower"
	NameBBPosition  = "bb_position"
	NameMAShort     = "ma_short"
	NameMALong      = "ma_long"
	NameStochK      = "stoch_k"
	NameStochD      = "stoch_d"
	NameVolumeRatio = "volume_ratio"
	NameATR         = "atr"
	NameWilliamsR   = "williams_r"
	NameBBBandwidth = "bb_bandwidth"
	NameOBV         = "obv"
	NameVPT         = "vpt"
	NameVolumeZ     = "volume_zscore"
)

// Snapshot holds every indicator per bar, aligned with the input series.
// NaN marks an undefined value.
type Snapshot struct {
	RSI         []float64
	MACD        []float64
	MACDSignal  []float64
	MACDHist    []float64
	BBUpper     []float64
	BBMiddle    []float64
	BBLower     []float64
	BBPosition  []float64
	MAShort     []float64
	MALong      []float64
	StochK      []float64
	StochD      []float64
	VolumeRatio []float64
	ATR         []float64
	WilliamsR   []float64
	BBBandwidth []float64
	OBV         []float64
	VPT         []float64
	VolumeZ     []float64
	// BBSqueeze is 1 on squeezed bars, 0 otherwise. It is not part of Series.
	BBSqueeze []float64
}

// Compute evaluates all indicators over the series. It never fails: short
// series simply yield undefined values.
func Compute(series models.OHLCVSeries, cfg Config) Snapshot {
	n := series.Len()
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, b := range series.Bars {
		highs[i], lows[i], closes[i], volumes[i] = b.High, b.Low, b.Close, b.Volume
	}

	var s Snapshot
	s.RSI = RSI(closes, cfg.RSIPeriod)
	s.MACD, s.MACDSignal, s.MACDHist = MACD(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	s.BBMiddle, s.BBUpper, s.BBLower, s.BBPosition = Bollinger(closes, cfg.BBPeriod, cfg.BBStdDev)
	s.MAShort = SMA(closes, cfg.MAShort)
	s.MALong = SMA(closes, cfg.MALong)
	s.StochK, s.StochD = Stochastic(highs, lows, closes, cfg.StochK, cfg.StochD)
	s.VolumeRatio = VolumeRatio(volumes, cfg.VolumePeriod)
	s.ATR = ATR(highs, lows, closes, cfg.ATRPeriod)
	s.WilliamsR = WilliamsR(highs, lows, closes, cfg.WilliamsPeriod)
	s.BBBandwidth = Bandwidth(s.BBMiddle, s.BBUpper, s.BBLower)
	s.BBSqueeze = Squeeze(s.BBBandwidth, cfg.SqueezeWindow)
	s.OBV = OBV(closes, volumes)
	s.VPT = VPT(closes, volumes)
	s.VolumeZ = VolumeZScore(volumes, cfg.VolumePeriod)
	return s
}

// Series exposes the snapshot as name -> per-bar values.
func (s Snapshot) Series() map[string][]float64 {
	return map[string][]float64{
		NameRSI:         s.RSI,
		NameMACD:        s.MACD,
		NameMACDSignal:  s.MACDSignal,
		NameMACDHist:    s.MACDHist,
		NameBBUpper:     s.BBUpper,
		NameBBMiddle:    s.BBMiddle,
		NameBBLower:     s.BBLower,
		NameBBPosition:  s.BBPosition,
		NameMAShort:     s.MAShort,
		NameMALong:      s.MALong,
		NameStochK:      s.StochK,
		NameStochD:      s.StochD,
		NameVolumeRatio: s.VolumeRatio,
		NameATR:         s.ATR,
		NameWilliamsR:   s.WilliamsR,
		NameBBBandwidth: s.BBBandwidth,
		NameOBV:         s.OBV,
		NameVPT:         s.VPT,
		NameVolumeZ:     s.VolumeZ,
	}
}

// At returns every indicator value at bar i; undefined values are nil.
func (s Snapshot) At(i int) map[string]*float64 {
	out := make(map[string]*float64)
	for name, xs := range s.Series() {
		v := math.NaN()
		if i >= 0 && i < len(xs) {
			v = xs[i]
		}
		out[name] = models.Float(v)
	}
	return out
}

// SqueezeAt reports the squeeze state of bar i, nil while undefined.
func (s Snapshot) SqueezeAt(i int) *bool {
	if i < 0 || i >= len(s.BBSqueeze) || math.IsNaN(s.BBSqueeze[i]) {
		return nil
	}
	v := s.BBSqueeze[i] == 1
	return &v
}

// Len is the number of bars covered.
func (s Snapshot) Len() int { return len(s.RSI) }
