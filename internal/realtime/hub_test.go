package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/trendscore/internal/contracts"
	"github.com/wonny/trendscore/pkg/logger"
)

func dial(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(httpHandler(hub))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func httpHandler(hub *Hub) *httpMux {
	return &httpMux{hub: hub}
}

func TestHub_ReplaysHistoryThenStreams(t *testing.T) {
	hub := NewHub(logger.Nop())
	hub.Publish(contracts.ProgressEvent{RunID: "r1", Stage: contracts.StageUniverse, Done: 1, Total: 1})

	conn := dial(t, hub)

	var first contracts.ProgressEvent
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, contracts.StageUniverse, first.Stage)
	assert.False(t, first.Time.IsZero())

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(contracts.ProgressEvent{RunID: "r1", Stage: contracts.StagePrices, Done: 2, Total: 5})

	var second contracts.ProgressEvent
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, contracts.StagePrices, second.Stage)
	assert.Equal(t, 2, second.Done)
}

func TestHub_HistoryIsBounded(t *testing.T) {
	hub := NewHub(logger.Nop())
	for i := 0; i < historyLimit+5; i++ {
		hub.Publish(contracts.ProgressEvent{Done: i})
	}

	history := hub.History()
	require.Len(t, history, historyLimit)
	assert.Equal(t, 5, history[0].Done)
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(logger.Nop())
	conn := dial(t, hub)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)
}

type httpMux struct{ hub *Hub }

func (m *httpMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.hub.ServeWS(w, r)
}
