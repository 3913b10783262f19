package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/dixieflatline76/Lumen/pkg/background"
	"github.com/dixieflatline76/Lumen/pkg/provider"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	s := NewServer("127.0.0.1:0")
	m, err := background.NewManager(background.Deps{
		Surfaces:  background.NewSurfacePair(),
		Overlay:   &background.Overlay{},
		Renderer:  s,
		Store:     s,
		Providers: map[string]provider.Provider{},
	})
	assert.NoError(t, err)
	t.Cleanup(m.Close)
	s.SetManager(m)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readOutbound(t *testing.T, ws *websocket.Conn) outbound {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg outbound
	assert.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestHealthCheck(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "running", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestHealthPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/health", nil)
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestInitEventProducesFrame(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dialWS(t, ts)

	err := ws.WriteMessage(websocket.TextMessage, []byte(
		`{"type":"init","state":{"background":{"type":"color","color":"#123456"}}}`))
	assert.NoError(t, err)

	msg := readOutbound(t, ws)
	assert.Equal(t, MsgFrame, msg.Type)
	assert.NotNil(t, msg.Frame)
	assert.Equal(t, "#123456", msg.Frame.Surfaces[msg.Frame.ActiveIndex].Color)
}

func TestPingPong(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dialWS(t, ts)

	assert.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	msg := readOutbound(t, ws)
	assert.Equal(t, MsgPong, msg.Type)
}

func TestLateJoinerGetsReplay(t *testing.T) {
	s, ts := newTestServer(t)

	first := dialWS(t, ts)
	assert.NoError(t, first.WriteMessage(websocket.TextMessage, []byte(
		`{"type":"init","state":{"background":{"type":"color","color":"#abcdef"}}}`)))
	msg := readOutbound(t, first)
	assert.Equal(t, MsgFrame, msg.Type)

	// A tab opened later gets the last frame immediately on connect.
	second := dialWS(t, ts)
	replay := readOutbound(t, second)
	assert.Equal(t, MsgFrame, replay.Type)
	assert.Equal(t, "#abcdef", replay.Frame.Surfaces[replay.Frame.ActiveIndex].Color)

	assert.Eventually(t, func() bool { return s.ClientCount() == 2 }, time.Second, 10*time.Millisecond)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	s, ts := newTestServer(t)

	a := dialWS(t, ts)
	b := dialWS(t, ts)
	assert.Eventually(t, func() bool { return s.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	s.PublishCurrentImage(background.CurrentMeta{Type: background.TypeImage, URL: "https://img/x", Source: "unsplash"})

	for _, ws := range []*websocket.Conn{a, b} {
		msg := readOutbound(t, ws)
		assert.Equal(t, MsgCurrentImage, msg.Type)
		assert.Equal(t, "https://img/x", msg.Meta.URL)
	}
}

func TestUndecodableMessageIsIgnored(t *testing.T) {
	_, ts := newTestServer(t)
	ws := dialWS(t, ts)

	assert.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{{{`)))

	// The connection survives; a ping still gets answered.
	assert.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	msg := readOutbound(t, ws)
	assert.Equal(t, MsgPong, msg.Type)
}
