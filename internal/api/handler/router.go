package handler

import (
	"campuscart/backend/internal/logger"
	"campuscart/backend/internal/models"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router wires every route onto a new gin engine.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(h.log))

	r.GET("/health", h.Health)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)

	authed := api.Group("", h.RequireAuth())
	authed.GET("/me", h.Me)
	authed.POST("/telegram/link-code", h.TelegramLinkCode)

	authed.GET("/notifications", h.ListNotifications)
	authed.GET("/notifications/unread-count", h.UnreadNotificationCount)
	authed.PUT("/notifications/read-all", h.MarkAllNotificationsRead)
	authed.PUT("/notifications/:id/read", h.MarkNotificationRead)
	authed.DELETE("/notifications/read", h.ClearReadNotifications)
	authed.DELETE("/notifications/:id", h.DeleteNotification)

	authed.GET("/messages/unread-count", h.UnreadMessageCount)
	authed.GET("/conversations/:userId/messages", h.ConversationMessages)

	authed.GET("/roommates/:postId/matches", h.RoommateMatches)

	admin := authed.Group("/admin", h.RequireRole(models.RoleAdmin))
	admin.POST("/notifications", h.AdminNotify)

	return r
}

// Health reports database and Redis reachability.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Storage.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": h.Hub.ClientCount()})
}
