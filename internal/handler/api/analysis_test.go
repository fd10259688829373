package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityPulse/internal/domain/models"
	"EquityPulse/internal/services/engine"
	"EquityPulse/internal/services/seriestest"
	"EquityPulse/internal/usecase"
	xlogger "EquityPulse/pkg/logger"
	"EquityPulse/pkg/metrics"
)

type stubProvider struct{ err error }

func (p stubProvider) Fetch(_ context.Context, ticker string, _, _ time.Time) (models.OHLCVSeries, error) {
	if p.err != nil {
		return models.OHLCVSeries{}, p.err
	}
	if ticker == "NOPE.TO" {
		return models.OHLCVSeries{}, fmt.Errorf("%w: %s", models.ErrNotAvailable, ticker)
	}
	return seriestest.RandomWalk(260, 0.0004, 0.012, 11), nil
}

type stubQueue struct {
	got []*models.AnalysisRequestMessage
	err error
}

func (q *stubQueue) Enqueue(_ context.Context, msg *models.AnalysisRequestMessage) error {
	q.got = append(q.got, msg)
	return q.err
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, p stubProvider, q *stubQueue) *echo.Echo {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig())
	require.NoError(t, err)
	svc := usecase.NewAnalysisService(p, eng, metrics.Nop{},
		usecase.WithClock(func() time.Time { return time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC) }))

	e := echo.New()
	var h *AnalysisHandler
	if q == nil {
		h = NewAnalysisHandler(xlogger.Nop(), svc, nil)
	} else {
		h = NewAnalysisHandler(xlogger.Nop(), svc, q)
	}
	h.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestAnalyzeEndpoint(t *testing.T) {
	e := newTestServer(t, stubProvider{}, nil)

	rec, env := do(e, http.MethodGet, "/api/analyze?ticker=ry.to&start=2024-01-02&var_confidence=0.99", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "private, max-age=60", rec.Header().Get(echo.HeaderCacheControl))

	var res models.ReportEnvelope
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "RY.TO", res.Ticker)
	require.NotNil(t, res.Report)
	assert.Equal(t, 260, res.Report.Metadata.DataPeriod.TotalDays)

	var outer map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &outer))
	var report map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(outer["report"], &report))
	for _, key := range []string{"metadata", "signals", "volatility_regime", "market_metrics", "attention_flags"} {
		assert.Contains(t, report, key)
	}
}

func TestAnalyzeEndpointErrors(t *testing.T) {
	tests := []struct {
		name     string
		provider stubProvider
		target   string
		status   int
	}{
		{"missing ticker", stubProvider{}, "/api/analyze?start=2024-01-02", http.StatusBadRequest},
		{"bad date", stubProvider{}, "/api/analyze?ticker=RY.TO&start=02-01-2024", http.StatusBadRequest},
		{"override out of range", stubProvider{}, "/api/analyze?ticker=RY.TO&start=2024-01-02&var_confidence=1.5", http.StatusBadRequest},
		{"inconsistent override", stubProvider{}, "/api/analyze?ticker=RY.TO&start=2024-01-02&ma_short=80", http.StatusBadRequest},
		{"unknown ticker", stubProvider{}, "/api/analyze?ticker=NOPE.TO&start=2024-01-02", http.StatusNotFound},
		{"provider failure", stubProvider{err: errors.New("dial tcp: refused")}, "/api/analyze?ticker=RY.TO&start=2024-01-02", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(newTestServer(t, tt.provider, nil), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.status, env.Status)
			assert.NotContains(t, rec.Body.String(), "refused", "internal causes stay in the logs")
		})
	}
}

func TestBatchEndpoint(t *testing.T) {
	e := newTestServer(t, stubProvider{}, nil)

	rec, env := do(e, http.MethodPost, "/api/analyze/batch", `{"tickers":["RY.TO","NOPE.TO"],"start":"2024-01-02"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list struct {
		Rows  []models.BatchItem `json:"rows"`
		Total int64              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.EqualValues(t, 2, list.Total)
	assert.NotNil(t, list.Rows[0].Result)
	assert.NotEmpty(t, list.Rows[1].Error)

	rec, _ = do(e, http.MethodPost, "/api/analyze/batch", `{"tickers":[],"start":"2024-01-02"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnqueueEndpoint(t *testing.T) {
	rec, _ := do(newTestServer(t, stubProvider{}, nil), http.MethodPost, "/api/analyze/async", `{"ticker":"RY.TO","start":"2024-01-02"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	q := &stubQueue{}
	e := newTestServer(t, stubProvider{}, q)
	rec, env := do(e, http.MethodPost, "/api/analyze/async", `{"ticker":"ry.to","start":"2024-01-02"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var res map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "RY.TO", res["ticker"])
	assert.NotEmpty(t, res["request_id"])
	require.Len(t, q.got, 1)
	assert.Equal(t, res["request_id"], q.got[0].RequestID)

	q.err = errors.New("broker down")
	rec, _ = do(e, http.MethodPost, "/api/analyze/async", `{"ticker":"RY.TO","start":"2024-01-02"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTickersAndReportsEndpoints(t *testing.T) {
	e := newTestServer(t, stubProvider{}, nil)

	rec, env := do(e, http.MethodGet, "/api/tickers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "RY.TO")
	assert.NotContains(t, string(env.Data), "^GSPTSE")

	rec, _ = do(e, http.MethodGet, "/api/reports/RY.TO", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "no report store wired")

	rec, _ = do(e, http.MethodGet, "/api/reports/RY.TO?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
