package handler

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/rooms"
	"campuscart/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) UnreadMessageCount(c *gin.Context) {
	total, bySender, err := h.Storage.UnreadMessageCounts(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.internalError(c, "count unread messages", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": total, "bySender": bySender})
}

// ConversationMessages returns the latest messages with another user, oldest first.
func (h *Handler) ConversationMessages(c *gin.Context) {
	me := currentUser(c)
	ctx := c.Request.Context()

	peer, err := h.Storage.GetUserByID(ctx, c.Param("userId"))
	if errors.Is(err, storage.ErrNotFound) {
		h.abort(c, http.StatusNotFound, "NOT_FOUND", "error.not_found")
		return
	}
	if err != nil {
		h.internalError(c, "load peer", err)
		return
	}

	limit := queryInt(c, "limit", config.HistoryLimit)
	if limit < 1 || limit > config.MaxPageSize {
		limit = config.HistoryLimit
	}
	msgs, err := h.Storage.RecentMessages(ctx, me.ID, peer.ID, limit)
	if err != nil {
		h.internalError(c, "load messages", err)
		return
	}

	channel := rooms.Conversation(me.ID, peer.ID)
	names := map[string]string{me.ID: me.DisplayName(), peer.ID: peer.DisplayName()}
	out := make([]models.MessagePayload, 0, len(msgs))
	for i := range msgs {
		out = append(out, models.NewMessagePayload(&msgs[i], channel, names[msgs[i].SenderID]))
	}
	c.JSON(http.StatusOK, gin.H{"conversationId": channel, "messages": out})
}
