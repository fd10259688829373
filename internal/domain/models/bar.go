package models

import (
	"fmt"
	"math"
	"time"
)

// PriceBar is one daily OHLCV observation.
type PriceBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// OHLCVSeries is an ordered, immutable sequence of bars for one instrument.
type OHLCVSeries struct {
	Ticker string
	Bars   []PriceBar
}

// Len returns the number of bars.
func (s OHLCVSeries) Len() int { return len(s.Bars) }

// Closes returns a copy of the close prices.
func (s OHLCVSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar. The series must not be empty.
func (s OHLCVSeries) Last() PriceBar { return s.Bars[len(s.Bars)-1] }

// Start returns the first bar date, or the zero time for an empty series.
func (s OHLCVSeries) Start() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[0].Date
}

// End returns the last bar date, or the zero time for an empty series.
func (s OHLCVSeries) End() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// Validate checks ordering and field sanity. Errors wrap ErrInput.
func (s OHLCVSeries) Validate() error {
	for i, b := range s.Bars {
		if b.Date.IsZero() {
			return fmt.Errorf("%w: bar %d has no date", ErrInput, i)
		}
		prices := [...]struct {
			name string
			v    float64
		}{{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close}}
		for _, p := range prices {
			if math.IsNaN(p.v) || math.IsInf(p.v, 0) || p.v <= 0 {
				return fmt.Errorf("%w: bar %d (%s) has invalid %s %v", ErrInput, i, b.Date.Format(DateLayout), p.name, p.v)
			}
		}
		if b.High < b.Low {
			return fmt.Errorf("%w: bar %d (%s) high %v below low %v", ErrInput, i, b.Date.Format(DateLayout), b.High, b.Low)
		}
		if math.IsNaN(b.Volume) || b.Volume < 0 {
			return fmt.Errorf("%w: bar %d (%s) has invalid volume %v", ErrInput, i, b.Date.Format(DateLayout), b.Volume)
		}
		if i > 0 && !b.Date.After(s.Bars[i-1].Date) {
			return fmt.Errorf("%w: dates not strictly increasing at bar %d (%s after %s)",
				ErrInput, i, b.Date.Format(DateLayout), s.Bars[i-1].Date.Format(DateLayout))
		}
	}
	return nil
}

// DateLayout is the calendar date format used across reports and requests.
const DateLayout = "2006-01-02"
