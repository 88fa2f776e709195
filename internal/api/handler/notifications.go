package handler

import (
	"campuscart/backend/internal/storage"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return def
}

func (h *Handler) ListNotifications(c *gin.Context) {
	page, err := h.Notify.List(c.Request.Context(), currentUser(c).ID, queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		h.internalError(c, "list notifications", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	n, err := h.Notify.UnreadCount(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.internalError(c, "count notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	res, err := h.Notify.MarkRead(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.abort(c, http.StatusNotFound, "NOT_FOUND", "error.not_found")
		return
	}
	if err != nil {
		h.internalError(c, "mark notification read", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	res, err := h.Notify.MarkAllRead(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.internalError(c, "mark all notifications read", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteNotification(c *gin.Context) {
	err := h.Notify.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		h.abort(c, http.StatusNotFound, "NOT_FOUND", "error.not_found")
		return
	}
	if err != nil {
		h.internalError(c, "delete notification", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearReadNotifications(c *gin.Context) {
	n, err := h.Notify.ClearRead(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.internalError(c, "clear read notifications", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
