// ABOUTME: Websocket integration tests over a live test server
// ABOUTME: Verifies delivery of global and private events and participant targeting

package httpapi

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajputkuldeep/chat-application/internal/chat"
)

// dialWS connects to the test server's /ws endpoint as the given user,
// passing the token as a query parameter the way browser clients do.
func dialWS(t *testing.T, ts *httptest.Server, api *testAPI, user string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + api.tokens[user]
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWSEvent(t *testing.T, conn *websocket.Conn) *chat.Event {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event chat.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	return &event
}

func TestWS_GlobalMessageReachesAllClients(t *testing.T) {
	api := setupAPI(t)
	ts := httptest.NewServer(api.handler)
	defer ts.Close()

	aliceConn := dialWS(t, ts, api, "alice")
	bobConn := dialWS(t, ts, api, "bob")

	code, body := api.do(t, "POST", "/messages/global", "alice",
		map[string]string{"body": "hello everyone"})
	require.Equal(t, 201, code)
	sentID := body["data"].(map[string]any)["id"].(string)

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		event := readWSEvent(t, conn)
		assert.Equal(t, "global", event.Stream)
		assert.Equal(t, sentID, event.MessageID)
		assert.Equal(t, "user-alice", event.From)
		assert.Equal(t, "hello everyone", event.Body)
	}
}

func TestWS_PrivateMessageOnlyReachesParticipants(t *testing.T) {
	api := setupAPI(t)
	ts := httptest.NewServer(api.handler)
	defer ts.Close()

	aliceConn := dialWS(t, ts, api, "alice")
	bobConn := dialWS(t, ts, api, "bob")

	code, body := api.do(t, "POST", "/messages/", "alice",
		map[string]string{"to": "user-bob", "body": "just for you"})
	require.Equal(t, 201, code)
	convID := body["conversationId"].(string)

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		event := readWSEvent(t, conn)
		assert.Equal(t, "private", event.Stream)
		assert.Equal(t, convID, event.ConversationID)
		assert.Equal(t, "user-alice", event.From)
		assert.Equal(t, "user-bob", event.To)
	}
}

func TestWS_RejectsMissingToken(t *testing.T) {
	api := setupAPI(t)
	ts := httptest.NewServer(api.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, 401, resp.StatusCode)
}
