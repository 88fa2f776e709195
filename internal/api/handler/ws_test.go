package handler_test

import (
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/rooms"
	"campuscart/backend/internal/storage/storagetest"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	d := websocket.Dialer{Subprotocols: []string{"bearer", token}, HandshakeTimeout: 2 * time.Second}
	conn, resp, err := d.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.Header.Get("Sec-WebSocket-Protocol"))
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads frames until one carries event, skipping the rest.
func readUntil(t *testing.T, conn *websocket.Conn, event string) models.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f models.Frame
		require.NoError(t, conn.ReadJSON(&f), "waiting for %s", event)
		if f.Event == event {
			return f
		}
	}
}

func write(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(models.Frame{Event: event, Data: raw}))
}

func TestWebSocket_ConnectAndChat(t *testing.T) {
	e := setup(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	ana := storagetest.SeedUser(t, e.store, "Ana")
	bo := storagetest.SeedUser(t, e.store, "Bo")

	a := dial(t, srv, e.token(t, ana))
	var connected models.ConnectedPayload
	require.NoError(t, json.Unmarshal(readUntil(t, a, models.EventConnected).Data, &connected))
	assert.Equal(t, ana.ID, connected.User.UserID)
	assert.NotEmpty(t, connected.ConnectionID)

	b := dial(t, srv, e.token(t, bo))
	readUntil(t, b, models.EventConnected)

	write(t, a, "join_conversation", map[string]string{"recipientId": bo.ID})
	var history models.ConversationHistoryPayload
	require.NoError(t, json.Unmarshal(readUntil(t, a, models.EventConversationHistory).Data, &history))
	assert.Equal(t, rooms.Conversation(ana.ID, bo.ID), history.ConversationID)
	assert.Empty(t, history.Messages)

	write(t, a, "send_message", map[string]string{"recipientId": bo.ID, "content": "  still selling the desk?  "})

	var sent models.MessageSentPayload
	require.NoError(t, json.Unmarshal(readUntil(t, a, models.EventMessageSent).Data, &sent))
	assert.NotEmpty(t, sent.MessageID)

	var note models.NewMessageNotificationPayload
	require.NoError(t, json.Unmarshal(readUntil(t, b, models.EventNewMessageNotification).Data, &note))
	assert.Equal(t, sent.MessageID, note.MessageID)
	assert.Equal(t, "still selling the desk?", note.Preview)
	assert.Equal(t, "Ana Test", note.SenderName)
}

func TestWebSocket_QueryToken(t *testing.T) {
	e := setup(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)
	ana := storagetest.SeedUser(t, e.store, "Ana")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv)+"?token="+e.token(t, ana), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	readUntil(t, conn, models.EventConnected)
}

func TestWebSocket_HubStopped(t *testing.T) {
	e := setup(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)
	ana := storagetest.SeedUser(t, e.store, "Ana")

	e.stopHub()
	<-e.hub.Done()

	conn := dial(t, srv, e.token(t, ana))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "got %v", err)
}

func TestWebSocket_RejectedHandshake(t *testing.T) {
	e := setup(t)
	srv := httptest.NewServer(e.router)
	t.Cleanup(srv.Close)

	tests := []struct {
		name  string
		token string
		code  string
	}{
		{"missing", "", "TOKEN_MISSING"},
		{"garbage", "not-a-jwt", "TOKEN_INVALID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
			if tt.token != "" {
				d.Subprotocols = []string{"bearer", tt.token}
			}
			conn, resp, err := d.Dial(wsURL(srv), nil)
			if conn != nil {
				_ = conn.Close()
			}
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var got errorBody
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.code, got.Code)
		})
	}
	assert.Zero(t, e.hub.ClientCount())
}
