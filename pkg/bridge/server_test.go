package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, engine Engine) (*httptest.Server, *Bridge) {
	t.Helper()
	logger := newTestLogger(t)

	b := New("session-1", engine, logger)
	srv := NewServer("127.0.0.1:0", b, logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, b
}

func TestServerState(t *testing.T) {
	ts, _ := newTestServer(t, &fakeEngine{enabled: true})

	client := NewClient(ts.URL, "session-1")
	enabled, err := client.State()

	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestServerToggleRoundTrip(t *testing.T) {
	engine := &fakeEngine{enabled: true}
	ts, _ := newTestServer(t, engine)
	client := NewClient(ts.URL, "session-1")

	require.NoError(t, client.Toggle(false))
	assert.Equal(t, []bool{false}, engine.toggleCalls)

	enabled, err := client.State()
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestServerRejectsWrongSender(t *testing.T) {
	engine := &fakeEngine{enabled: true}
	ts, _ := newTestServer(t, engine)

	client := NewClient(ts.URL, "intruder")
	err := client.Toggle(false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid sender")
	assert.Empty(t, engine.toggleCalls)
}

func TestServerMalformedBody(t *testing.T) {
	ts, _ := newTestServer(t, &fakeEngine{})

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/message", strings.NewReader("{not json"))
	require.NoError(t, err)
	req.Header.Set(SenderHeader, "session-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerWebsocket(t *testing.T) {
	engine := &fakeEngine{enabled: true}
	ts, _ := newTestServer(t, engine)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{}
	header.Set(SenderHeader, "session-1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Request{Action: ActionGetState}))
	var state Response
	require.NoError(t, conn.ReadJSON(&state))
	require.NotNil(t, state.FullMapHeight)
	assert.True(t, *state.FullMapHeight)

	require.NoError(t, conn.WriteJSON(Request{Action: ActionToggle, Enabled: false}))
	var toggled Response
	require.NoError(t, conn.ReadJSON(&toggled))
	require.NotNil(t, toggled.Success)
	assert.True(t, *toggled.Success)
	assert.Equal(t, []bool{false}, engine.toggleCalls)
}

func TestServerWebsocketWrongSender(t *testing.T) {
	engine := &fakeEngine{enabled: true}
	ts, _ := newTestServer(t, engine)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Request{Action: ActionToggle, Enabled: false}))
	var resp Response
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "Invalid sender", resp.Error)
	assert.Empty(t, engine.toggleCalls)
}
