package signal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/callhub/internal/core"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// socketPair returns the server and client ends of one real websocket.
func socketPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	accepted := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- ws
	}))
	t.Cleanup(srv.Close)

	client, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = client.Close() })

	select {
	case server := <-accepted:
		return server, client
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade did not complete")
		return nil, nil
	}
}

func TestWsSignalConn_TrySend(t *testing.T) {
	req := require.New(t)
	server, client := socketPair(t)
	conn := newWsSignalConn("c1", server, 1)
	req.Equal("c1", string(conn.ID()))

	// Given a queue with room for one frame
	req.NoError(conn.TrySend(core.Frame(`{"type":"pong"}`)))

	// Then the next frame reports backpressure instead of blocking
	req.ErrorIs(conn.TrySend(core.Frame(`{"type":"pong"}`)), core.ErrBackpressure)

	// When the connection is closed
	conn.Close()
	conn.Close()

	// Then sends report it and the peer sees the socket go away
	req.ErrorIs(conn.TrySend(core.Frame(`{"type":"pong"}`)), core.ErrConnClosed)
	req.NoError(client.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, _, err := client.ReadMessage()
	req.Error(err)
}

func TestWsSignalConn_Zero_Buffer_Still_Queues_One(t *testing.T) {
	req := require.New(t)
	server, _ := socketPair(t)
	conn := newWsSignalConn("c1", server, 0)
	t.Cleanup(conn.Close)

	req.NoError(conn.TrySend(core.Frame("x")))
	req.ErrorIs(conn.TrySend(core.Frame("x")), core.ErrBackpressure)
}
