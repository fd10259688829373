package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquityPulse/internal/domain/models"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	h := NewHub(nil)
	e := echo.New()
	h.RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/reports"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubBroadcast(t *testing.T) {
	h, url := startHub(t)
	all := dial(t, url)
	td := dial(t, url+"?ticker=td.to")
	waitClients(t, h, 2)

	h.Broadcast(&models.ReportEnvelope{ID: "1", Ticker: "RY.TO", Report: &models.AnalysisReport{}})
	h.Broadcast(&models.ReportEnvelope{ID: "2", Ticker: "TD.TO", Report: &models.AnalysisReport{}})

	read := func(c *websocket.Conn) models.ReportEnvelope {
		require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, msg, err := c.ReadMessage()
		require.NoError(t, err)
		var env models.ReportEnvelope
		require.NoError(t, json.Unmarshal(msg, &env))
		return env
	}

	assert.Equal(t, "1", read(all).ID)
	assert.Equal(t, "2", read(all).ID)
	got := read(td)
	assert.Equal(t, "2", got.ID)
	assert.Equal(t, "TD.TO", got.Ticker)
}

func TestHubRemovesDisconnectedClient(t *testing.T) {
	h, url := startHub(t)
	conn := dial(t, url)
	waitClients(t, h, 1)

	require.NoError(t, conn.Close())
	waitClients(t, h, 0)

	h.Broadcast(&models.ReportEnvelope{ID: "x", Ticker: "RY.TO"})
	h.Broadcast(nil)
}
