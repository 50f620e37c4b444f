// realtime/hub_test.go
package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zaptest.NewLogger(t))
	go hub.Run()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = ServeWS(hub, w, r)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	// give the hub loop a beat to process the registration
	time.Sleep(50 * time.Millisecond)
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return env
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, srv := newTestHub(t)
	a := dial(t, srv)
	b := dial(t, srv)

	hub.Broadcast(EventInventory, map[string]any{"id": "x", "availableQuantity": 3})

	for _, conn := range []*websocket.Conn{a, b} {
		env := readEnvelope(t, conn)
		assert.Equal(t, EventInventory, env.Event)
		assert.NotEmpty(t, env.Timestamp)
	}
}

func TestRoomBroadcastOnlyReachesMembers(t *testing.T) {
	hub, srv := newTestHub(t)
	member := dial(t, srv)
	outsider := dial(t, srv)

	room := LoanRoom("abc123")
	require.NoError(t, member.WriteJSON(map[string]string{"action": "join", "room": room}))
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastRoom(room, EventLoanApproved, map[string]any{"id": "abc123"})

	env := readEnvelope(t, member)
	assert.Equal(t, EventLoanApproved, env.Event)

	require.NoError(t, outsider.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := outsider.ReadMessage()
	assert.Error(t, err) // nothing for the outsider: deadline hits
}

func TestStopEndsRunLoop(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t))
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	hub.Stop()
	hub.Stop() // second call is a no-op

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestPerConnectionOrderMatchesEmission(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	const n = 10
	for i := 0; i < n; i++ {
		hub.Broadcast(EventLoanUpdated, map[string]any{"seq": i})
	}
	for i := 0; i < n; i++ {
		env := readEnvelope(t, conn)
		data, ok := env.Data.(map[string]any)
		require.True(t, ok)
		assert.EqualValues(t, i, data["seq"])
	}
}
