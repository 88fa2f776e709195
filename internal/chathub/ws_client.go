package chathub

import (
	"campuscart/backend/internal/models"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketClient реалізує інтерфейс chathub.Client
type WebSocketClient struct {
	ID   string
	User models.Identity
	Conn *websocket.Conn
	Hub  *ManagerService

	send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, user models.Identity) *WebSocketClient {
	return &WebSocketClient{
		ID:   uuid.New().String(),
		User: user,
		Conn: conn,
		Hub:  hub,
		send: make(chan []byte, hub.cfg.SendBuffer),
	}
}

func (c *WebSocketClient) GetID() string             { return c.ID }
func (c *WebSocketClient) GetUserID() string         { return c.User.UserID }
func (c *WebSocketClient) Identity() models.Identity { return c.User }

func (c *WebSocketClient) Send(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Run запускає 'pumps' для WebSocket
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the send channel, which makes writePump send a close frame and exit.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump handles inbound frames one at a time, in arrival order.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	cfg := c.Hub.cfg
	c.Conn.SetReadLimit(cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Debug("websocket read failed", zap.String("conn_id", c.ID), zap.Error(err))
			}
			break
		}
		c.Hub.HandleInbound(c, message)
	}
}

// writePump drains the send channel to the socket and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	cfg := c.Hub.cfg
	ticker := time.NewTicker(cfg.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if !ok {
				// Канал закрито хабом, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

			// Flush whatever queued up meanwhile, one frame per JSON document.
			n := len(c.send)
			for i := 0; i < n; i++ {
				next, ok := <-c.send
				if !ok {
					c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.Conn.WriteMessage(websocket.TextMessage, next); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
