package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/signalhub/internal/app"
	"github.com/dkeye/signalhub/internal/app/ledger"
	"github.com/dkeye/signalhub/internal/app/orch"
	"github.com/dkeye/signalhub/internal/config"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *httptest.Server
	orch   *orch.Orchestrator
}

func newTestEnv(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Mode:       "test",
		ReadLimit:  4096,
		PingPeriod: time.Minute,
		WriteWait:  time.Second,
		SendBuffer: 16,
		ICEServers: []config.ICEServer{{URLs: []string{"stun:stun.example.com:3478"}}},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomDirectory(),
		Ledger:   ledger.New(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(SetupRouter(ctx, cfg, o))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testEnv{server: srv, orch: o}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func (e *testEnv) createRoom(t *testing.T) (string, string) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/rooms", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["roomId"].(string), body["hostToken"].(string)
}

func TestHealthAndStatus(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	env.createRoom(t)
	resp, body = env.do(t, http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "signalhub", body["service"])
	assert.Equal(t, "test", body["mode"])
	assert.Equal(t, float64(1), body["rooms"])
	assert.Equal(t, float64(0), body["liveRooms"])
	assert.Equal(t, float64(0), body["connections"])
	assert.Equal(t, []any{}, body["activeRooms"])
	assert.Contains(t, body, "uptime")
}

func TestStatusListsActiveRooms(t *testing.T) {
	env := newTestEnv(t)
	x, _ := dial(t, env)
	sendJSON(t, x, map[string]any{"type": "join", "roomId": "ab23cd"})
	require.Equal(t, "room-state", readEvent(t, x)["type"])

	_, body := env.do(t, http.MethodGet, "/api/status", "")
	assert.Equal(t, float64(1), body["liveRooms"])
	assert.Equal(t, float64(1), body["connections"])
	assert.Equal(t, []any{map[string]any{"roomId": "AB23CD", "clientCount": float64(1)}}, body["activeRooms"])
}

func TestICEServers(t *testing.T) {
	env := newTestEnv(t)
	resp, body := env.do(t, http.MethodGet, "/api/ice-servers", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	servers := body["iceServers"].([]any)
	require.Len(t, servers, 1)
	assert.Equal(t, []any{"stun:stun.example.com:3478"}, servers[0].(map[string]any)["urls"])
}

func TestCreateAndJoinRoom(t *testing.T) {
	env := newTestEnv(t)
	roomID, hostToken := env.createRoom(t)
	assert.Len(t, roomID, 6)

	resp, body := env.do(t, http.MethodPost, "/api/rooms/"+strings.ToLower(roomID)+"/join",
		`{"displayName":"  Alex ","role":"host","hostToken":"`+hostToken+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, roomID, body["roomId"])
	assert.Equal(t, "host", body["role"])
	assert.Equal(t, "Alex", body["displayName"])
	assert.NotEmpty(t, body["participantId"])
	assert.NotEmpty(t, body["joinedAt"])
	assert.NotEmpty(t, body["createdAt"])
	assert.Len(t, body["participants"], 1)

	resp, body = env.do(t, http.MethodPost, "/api/rooms/"+roomID+"/join", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "guest", body["role"])
	assert.Nil(t, body["displayName"])
	assert.Len(t, body["participants"], 2)

	resp, body = env.do(t, http.MethodGet, "/api/rooms/"+roomID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	participants := body["participants"].([]any)
	require.Len(t, participants, 2)
	assert.Equal(t, "host", participants[0].(map[string]any)["role"])
	assert.NotContains(t, body, "hostToken")
}

func TestJoinRoomErrors(t *testing.T) {
	env := newTestEnv(t)
	roomID, _ := env.createRoom(t)

	resp, body := env.do(t, http.MethodPost, "/api/rooms/ZZZZZZ/join", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "RoomNotFound", body["error"])
	assert.NotEmpty(t, body["message"])

	resp, body = env.do(t, http.MethodPost, "/api/rooms/"+roomID+"/join", `{"role":"host"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "InvalidHostToken", body["error"])

	resp, body = env.do(t, http.MethodPost, "/api/rooms/"+roomID+"/join", `{"role":"host","hostToken":"wrong"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "InvalidHostToken", body["error"])

	resp, body = env.do(t, http.MethodPost, "/api/rooms/"+roomID+"/join", `{"displayName":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "InvalidBody", body["error"])

	resp, _ = env.do(t, http.MethodGet, "/api/rooms/ZZZZZZ", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func wsURL(env *testEnv) string {
	return "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws"
}

func dial(t *testing.T, env *testEnv) (*websocket.Conn, string) {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(env), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	ev := readEvent(t, conn)
	require.Equal(t, "welcome", ev["type"])
	return conn, ev["clientId"].(string)
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev map[string]any
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

func TestRealtimeScenario(t *testing.T) {
	env := newTestEnv(t)
	roomID, _ := env.createRoom(t)

	x, xID := dial(t, env)
	y, yID := dial(t, env)
	assert.NotEqual(t, xID, yID)

	// The real-time path does not ask the ledger for a host token.
	sendJSON(t, x, map[string]any{"type": "join", "roomId": roomID, "displayName": "Alex", "role": "host"})
	ev := readEvent(t, x)
	assert.Equal(t, "room-state", ev["type"])
	assert.Equal(t, []any{}, ev["participants"])

	sendJSON(t, y, map[string]any{"type": "join", "roomId": roomID, "displayName": "Sam"})
	ev = readEvent(t, y)
	assert.Equal(t, "room-state", ev["type"])
	assert.Equal(t, []any{map[string]any{"clientId": xID, "displayName": "Alex", "role": "host"}}, ev["participants"])

	ev = readEvent(t, x)
	assert.Equal(t, "user-joined", ev["type"])
	assert.Equal(t, map[string]any{"clientId": yID, "displayName": "Sam", "role": "guest"}, ev["participant"])

	sendJSON(t, x, map[string]any{"type": "signal", "targetClientId": yID, "payload": map[string]any{"sdp": "offer"}})
	ev = readEvent(t, y)
	assert.Equal(t, "signal", ev["type"])
	assert.Equal(t, xID, ev["from"])
	assert.Equal(t, map[string]any{"sdp": "offer"}, ev["payload"])

	// Malformed frames are dropped; the next thing x sees is its own chat echo.
	require.NoError(t, x.WriteMessage(websocket.TextMessage, []byte("garbage")))
	sendJSON(t, x, map[string]any{"type": "bogus"})
	sendJSON(t, x, map[string]any{"type": "signal", "targetClientId": "nobody"})
	sendJSON(t, x, map[string]any{"type": "chat", "text": "hello", "messageId": "marker"})
	ev = readEvent(t, x)
	assert.Equal(t, "chat", ev["type"])
	assert.Equal(t, "marker", ev["messageId"])
	ev = readEvent(t, y)
	assert.Equal(t, "chat", ev["type"])
	assert.Equal(t, "hello", ev["text"])
	assert.Equal(t, xID, ev["clientId"])

	require.NoError(t, y.Close())
	ev = readEvent(t, x)
	assert.Equal(t, map[string]any{"type": "user-left", "clientId": yID}, ev)

	assert.Eventually(t, func() bool { return env.orch.Registry.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, x.Close())
	assert.Eventually(t, func() bool {
		return env.orch.Registry.Count() == 0 && env.orch.Rooms.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOversizedFrameClosesConnection(t *testing.T) {
	env := newTestEnv(t)
	x, _ := dial(t, env)
	require.NoError(t, x.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat","text":"`+strings.Repeat("a", 8192)+`"}`)))

	require.NoError(t, x.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := x.ReadMessage()
	require.Error(t, err)
	assert.Eventually(t, func() bool { return env.orch.Registry.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSilentPeerIsDroppedWithInternalErrorClose(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		// pong wait is 500ms
		cfg.PingPeriod = 450 * time.Millisecond
	})
	x, _ := dial(t, env)
	y, yID := dial(t, env)
	// y swallows pings and never answers them.
	y.SetPingHandler(func(string) error { return nil })

	sendJSON(t, x, map[string]any{"type": "join", "roomId": "AB23CD"})
	assert.Equal(t, "room-state", readEvent(t, x)["type"])
	sendJSON(t, y, map[string]any{"type": "join", "roomId": "AB23CD"})
	assert.Equal(t, "room-state", readEvent(t, y)["type"])
	assert.Equal(t, "user-joined", readEvent(t, x)["type"])

	require.NoError(t, y.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err := y.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr), "got %v", err)

	// x keeps answering pings while it reads, so it stays connected.
	ev := readEvent(t, x)
	assert.Equal(t, map[string]any{"type": "user-left", "clientId": yID}, ev)
	assert.Eventually(t, func() bool { return env.orch.Registry.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginAllowList(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) {
		cfg.AllowedOrigins = []string{"https://app.example.com/"}
	})

	for _, tc := range []struct {
		name   string
		origin string
		ok     bool
	}{
		{"allowed", "https://app.example.com", true},
		{"allowed any case", "HTTPS://APP.EXAMPLE.COM", true},
		{"no origin header", "", true},
		{"other origin", "https://evil.example.com", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			header := http.Header{}
			if tc.origin != "" {
				header.Set("Origin", tc.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(env), header)
			if !tc.ok {
				require.ErrorIs(t, err, websocket.ErrBadHandshake)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			defer conn.Close()
			assert.Equal(t, "welcome", readEvent(t, conn)["type"])
		})
	}
}
