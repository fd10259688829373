package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listRequest struct {
	Ticker string `query:"ticker" validate:"required,max=16"`
	Start  string `query:"start" validate:"required,datetime=2006-01-02"`
	Limit  int    `query:"limit" default:"20" validate:"gte=1,lte=500"`
}

func newContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	c, _ := newContext("/?ticker=RY.TO&start=2024-01-02")
	req := &listRequest{}
	assert.Nil(t, ReadAndValidateRequest(c, req))
	assert.Equal(t, 20, req.Limit)
}

func TestReadAndValidateRequestReportsWireNames(t *testing.T) {
	c, _ := newContext("/?start=02/01/2024&limit=900")
	verr := ReadAndValidateRequest(c, &listRequest{})
	errs, ok := verr.([]ValidationError)
	require.True(t, ok)

	byField := map[string]ValidationError{}
	for _, e := range errs {
		byField[e.Field] = e
	}
	assert.Equal(t, "ERR_REQUIRED", byField["ticker"].Code)
	assert.Equal(t, "ERR_DATETIME", byField["start"].Code)
	assert.Equal(t, "ERR_LTE", byField["limit"].Code)
	assert.Equal(t, "limit must be less than or equal to 500", byField["limit"].Message)
}

func TestAppErrorResponseStatus(t *testing.T) {
	c, rec := newContext("/")
	require.NoError(t, AppErrorResponse(c, NotFoundErrorf("no data for %s", "XYZ.TO")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.Contains(t, rec.Body.String(), "ERR_NOT_FOUND")

	c, rec = newContext("/")
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDataResponseEchoesRequestID(t *testing.T) {
	c, rec := newContext("/")
	c.Response().Header().Set(echo.HeaderXRequestID, "req-42")
	require.NoError(t, AcceptedResponse(c, map[string]string{"ticker": "RY.TO"}))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-42", body.RequestID)
}

func TestClientRetriesTemporaryStatus(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "RY.TO", r.URL.Query().Get("symbol"))
		assert.Equal(t, "equitypulse-test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithRetry(3, time.Millisecond), WithUserAgent("equitypulse-test"))
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodGet,
		URL:         srv.URL,
		QueryParams: map[string][]string{"symbol": {"RY.TO"}},
	}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, strings.Repeat("x", 2000), http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(WithRetry(5, time.Millisecond)).SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.LessOrEqual(t, len(se.Body), maxErrorBody)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
