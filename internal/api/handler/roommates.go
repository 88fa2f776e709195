package handler

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/roommate"
	"campuscart/backend/internal/storage"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoommateMatches ranks compatible posts for one of the caller's own posts.
func (h *Handler) RoommateMatches(c *gin.Context) {
	limit := queryInt(c, "limit", config.DefaultMatchLimit)
	if limit < 1 || limit > config.MaxMatchLimit {
		limit = config.DefaultMatchLimit
	}

	matches, err := h.Matcher.FindMatches(c.Request.Context(), currentUser(c).ID, c.Param("postId"), limit)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.abort(c, http.StatusNotFound, "NOT_FOUND", "error.not_found")
		return
	case errors.Is(err, roommate.ErrNotOwner):
		h.abort(c, http.StatusForbidden, "FORBIDDEN", "auth.forbidden")
		return
	case err != nil:
		h.internalError(c, "find matches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}
