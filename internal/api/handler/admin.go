package handler

import (
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/notify"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type adminNotifyRequest struct {
	Scope        string                  `json:"scope" binding:"required,oneof=user university all"`
	UserIDs      []string                `json:"userIds" binding:"omitempty,dive,required"`
	UniversityID string                  `json:"universityId" binding:"required_if=Scope university"`
	Type         models.NotificationType `json:"type" binding:"required"`
	Title        string                  `json:"title" binding:"required"`
	Message      string                  `json:"message"`
	Data         json.RawMessage         `json:"data"`
}

// AdminNotify sends a notification to chosen users, a whole university, or everyone online.
func (h *Handler) AdminNotify(c *gin.Context) {
	var body adminNotifyRequest
	if err := c.ShouldBindJSON(&body); err != nil || (body.Scope == "user" && len(body.UserIDs) == 0) {
		h.abort(c, http.StatusBadRequest, "INVALID_PAYLOAD", "error.invalid_payload")
		return
	}
	req := notify.Request{Type: body.Type, Title: body.Title, Message: body.Message, Data: body.Data}
	ctx := c.Request.Context()

	var (
		res notify.BatchResult
		err error
	)
	switch body.Scope {
	case "user":
		res, err = h.Notify.DeliverToMany(ctx, body.UserIDs, req)
	case "university":
		res, err = h.Notify.DeliverToUniversity(ctx, body.UniversityID, req)
	case "all":
		err = h.Notify.DeliverToAll(ctx, req)
	}
	if errors.Is(err, notify.ErrInvalidRequest) {
		h.abort(c, http.StatusBadRequest, "INVALID_PAYLOAD", "error.invalid_payload")
		return
	}
	if err != nil {
		h.internalError(c, "admin notify", err)
		return
	}

	failed := make([]string, 0, len(res.Failed))
	for id := range res.Failed {
		failed = append(failed, id)
	}
	h.log.Info("admin notification sent",
		zap.String("admin_id", currentUser(c).ID),
		zap.String("scope", body.Scope),
		zap.Int("delivered", res.Delivered),
		zap.Int("failed", len(failed)))
	c.JSON(http.StatusAccepted, gin.H{"scope": body.Scope, "delivered": res.Delivered, "failed": failed})
}
