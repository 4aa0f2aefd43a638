package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
)

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func waitForHub(t *testing.T, check func() bool) {
	t.Helper()
	for i := 0; i < 200; i++ {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestWebSocketRegistersAndPumpsMessages(t *testing.T) {
	hub := &mockHub{}
	srv := newTestServer(t, &mockMatchService{}, withHub(hub))
	server := httptest.NewServer(srv.echo)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	waitForHub(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.registered) == 1
	})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"subscribe","matchId":"7"}`)))

	waitForHub(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.messages) == 1
	})

	hub.mu.Lock()
	assert.JSONEq(t, `{"type":"subscribe","matchId":"7"}`, string(hub.messages[0]))
	hub.mu.Unlock()

	require.NoError(t, conn.Close())

	waitForHub(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.unregistered) == 1
	})
}

func TestWebSocketGatekeeperRateLimited(t *testing.T) {
	srv := newTestServer(t, &mockMatchService{},
		withGatekeeper(&staticGatekeeper{decision: domain.GateRateLimited}))
	server := httptest.NewServer(srv.echo)
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestWebSocketGatekeeperDenied(t *testing.T) {
	srv := newTestServer(t, &mockMatchService{},
		withGatekeeper(&staticGatekeeper{decision: domain.GateDenied}))
	server := httptest.NewServer(srv.echo)
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketGatekeeperUnavailable(t *testing.T) {
	srv := newTestServer(t, &mockMatchService{},
		withGatekeeper(&staticGatekeeper{err: errors.New("gate backend down")}))
	server := httptest.NewServer(srv.echo)
	defer server.Close()

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebSocketRegisterAtCapacity(t *testing.T) {
	hub := &mockHub{registerErr: errors.New("hub is at capacity")}
	srv := newTestServer(t, &mockMatchService{}, withHub(hub))
	server := httptest.NewServer(srv.echo)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	// The server closes the freshly upgraded connection with a close
	// frame instead of serving it.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "expected try-again-later close, got %v", err)
}
