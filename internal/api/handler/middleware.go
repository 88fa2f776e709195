package handler

import (
	"campuscart/backend/internal/auth"
	"campuscart/backend/internal/models"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const userKey = "user"

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// RequireAuth resolves the Authorization bearer token to an active user.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := h.Auth.Authenticate(c.Request.Context(), auth.BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			h.rejectAuth(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (h *Handler) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := currentUser(c); u == nil || u.Role != role {
			h.abort(c, http.StatusForbidden, "FORBIDDEN", "auth.forbidden")
			return
		}
		c.Next()
	}
}

// rejectAuth maps an authentication failure to 401 {error, code}.
func (h *Handler) rejectAuth(c *gin.Context, err error) {
	var ae *auth.AuthError
	if !errors.As(err, &ae) {
		h.internalError(c, "authenticate", err)
		return
	}
	h.abort(c, http.StatusUnauthorized, string(ae.Code), ae.MessageKey())
}
