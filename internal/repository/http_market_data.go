package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"EquityPulse/internal/domain/models"
	domrepo "EquityPulse/internal/domain/repository"
	xhttp "EquityPulse/pkg/http"
	applogger "EquityPulse/pkg/logger"
)

// HTTPMarketData fetches daily bars from a Yahoo Finance compatible chart API.
type HTTPMarketData struct {
	baseURL string
	client  *xhttp.Client
	l       *applogger.Logger
}

func NewHTTPMarketData(baseURL string, client *xhttp.Client) *HTTPMarketData {
	return &HTTPMarketData{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// SetLogger injects a structured logger.
func (p *HTTPMarketData) SetLogger(l *applogger.Logger) { p.l = l }

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

// chartQuote holds parallel per-timestamp arrays; any entry may be null.
type chartQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// Fetch requests [from, to] inclusive at daily resolution.
func (p *HTTPMarketData) Fetch(ctx context.Context, ticker string, from, to time.Time) (models.OHLCVSeries, error) {
	start := time.Now()
	var resp chartResponse
	err := p.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    p.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker),
		QueryParams: map[string][]string{
			"period1":  {strconv.FormatInt(from.Unix(), 10)},
			"period2":  {strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10)},
			"interval": {"1d"},
			"events":   {"history"},
		},
	}, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return models.OHLCVSeries{}, fmt.Errorf("%w: %s not found upstream", models.ErrNotAvailable, ticker)
		}
		if p.l != nil {
			p.l.Error("market data request error",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		}
		return models.OHLCVSeries{}, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	if e := resp.Chart.Error; e != nil {
		return models.OHLCVSeries{}, fmt.Errorf("%w: %s: %s %s", models.ErrNotAvailable, ticker, e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return models.OHLCVSeries{}, fmt.Errorf("%w: %s returned no result", models.ErrNotAvailable, ticker)
	}

	series := toSeries(ticker, resp.Chart.Result[0], from, to)
	if p.l != nil {
		p.l.Debug("market data fetched",
			applogger.String("ticker", ticker),
			applogger.Int("bars", series.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	if series.Len() == 0 {
		return series, fmt.Errorf("%w: %s %s..%s", models.ErrNotAvailable,
			ticker, from.Format(models.DateLayout), to.Format(models.DateLayout))
	}
	return series, nil
}

// toSeries keeps bars with every OHLCV field present inside [from, to], one
// per exchange-local calendar date. A later timestamp on the same date
// replaces the earlier one.
func toSeries(ticker string, r chartResult, from, to time.Time) models.OHLCVSeries {
	series := models.OHLCVSeries{Ticker: ticker}
	if len(r.Indicators.Quote) == 0 {
		return series
	}
	q := r.Indicators.Quote[0]
	at := func(vals []*float64, i int) (float64, bool) {
		if i >= len(vals) || vals[i] == nil {
			return 0, false
		}
		return *vals[i], true
	}

	bars := make([]models.PriceBar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, ok1 := at(q.Open, i)
		h, ok2 := at(q.High, i)
		l, ok3 := at(q.Low, i)
		c, ok4 := at(q.Close, i)
		v, ok5 := at(q.Volume, i)
		if !(ok1 && ok2 && ok3 && ok4 && ok5) {
			continue
		}
		y, m, d := time.Unix(ts+r.Meta.GMTOffset, 0).UTC().Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if date.Before(from) || date.After(to) {
			continue
		}
		b := models.PriceBar{Date: date, Open: o, High: h, Low: l, Close: c, Volume: v}
		if n := len(bars); n > 0 && bars[n-1].Date.Equal(date) {
			bars[n-1] = b
			continue
		}
		bars = append(bars, b)
	}
	series.Bars = bars
	return series
}

var _ domrepo.MarketDataProvider = (*HTTPMarketData)(nil)
