package handler

import (
	"campuscart/backend/internal/auth"
	"campuscart/backend/internal/chathub"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ServeWebSocket authenticates the handshake and only then upgrades. A rejected handshake
// gets a plain 401 with {error, code}.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user, err := h.Auth.Authenticate(c.Request.Context(), auth.TokenFromRequest(c.Request))
	if err != nil {
		h.log.Debug("websocket handshake rejected", zap.String("code", string(auth.CodeOf(err))))
		h.rejectAuth(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn("websocket upgrade failed", zap.String("user_id", user.ID), zap.Error(err))
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, user.Identity())
	select {
	case h.Hub.RegisterCh <- client:
		client.Run()
	case <-h.Hub.Done():
		h.log.Debug("hub stopped, closing websocket", zap.String("user_id", user.ID))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"),
			time.Now().Add(time.Second))
		_ = conn.Close()
	}
}
