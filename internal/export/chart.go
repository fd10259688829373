package export

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/indicators"
)

// RenderChart draws close prices with the Bollinger bands as a PNG.
func RenderChart(series models.OHLCVSeries, cfg indicators.Config) ([]byte, error) {
	if series.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 bars, got %d", models.ErrInput, series.Len())
	}
	dates := make([]time.Time, series.Len())
	for i, b := range series.Bars {
		dates[i] = b.Date
	}
	closes := series.Closes()
	middle, upper, lower, _ := indicators.Bollinger(closes, cfg.BBPeriod, cfg.BBStdDev)

	band := chart.Style{
		StrokeColor:     drawing.ColorFromHex("9ca3af"),
		StrokeWidth:     1,
		StrokeDashArray: []float64{4.0, 3.0},
	}
	seriesList := []chart.Series{
		chart.TimeSeries{
			Name:    "Close",
			Style:   chart.Style{StrokeColor: drawing.ColorFromHex("2563eb"), StrokeWidth: 2},
			XValues: dates,
			YValues: closes,
		},
	}
	for _, s := range []struct {
		name  string
		ys    []float64
		style chart.Style
	}{
		{"Upper band", upper, band},
		{"Middle band", middle, chart.Style{StrokeColor: drawing.ColorFromHex("f59e0b"), StrokeWidth: 1}},
		{"Lower band", lower, band},
	} {
		xs, ys := defined(dates, s.ys)
		if len(xs) < 2 {
			continue
		}
		seriesList = append(seriesList, chart.TimeSeries{Name: s.name, Style: s.style, XValues: xs, YValues: ys})
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s close and Bollinger bands", series.Ticker),
		Width:  1000,
		Height: 450,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: seriesList,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// defined drops the points where ys is NaN.
func defined(xs []time.Time, ys []float64) ([]time.Time, []float64) {
	outX := make([]time.Time, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, y)
	}
	return outX, outY
}
