package handler

import (
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// linkCodeTTL bounds how long a Telegram link code stays valid.
const linkCodeTTL = 10 * time.Minute

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login перевіряє пароль та повертає JWT
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, http.StatusBadRequest, "INVALID_PAYLOAD", "error.invalid_payload")
		return
	}

	user, err := h.Storage.GetUserByEmail(c.Request.Context(), models.NormalizeEmail(req.Email))
	if errors.Is(err, storage.ErrNotFound) {
		h.abort(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "auth.invalid_credentials")
		return
	}
	if err != nil {
		h.internalError(c, "load user", err)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.abort(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "auth.invalid_credentials")
		return
	}
	if !user.IsActive() {
		h.abort(c, http.StatusForbidden, "ACCOUNT_INACTIVE", "auth.account_inactive")
		return
	}

	token, exp, err := h.Tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.internalError(c, "issue token", err)
		return
	}
	h.log.Info("user logged in", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": exp, "user": user.Identity()})
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).Identity())
}

// TelegramLinkCode issues a one-time code the user sends to the bot as /start <code>.
func (h *Handler) TelegramLinkCode(c *gin.Context) {
	code, err := h.Storage.CreateTelegramLinkCode(c.Request.Context(), currentUser(c).ID, linkCodeTTL)
	if err != nil {
		h.internalError(c, "create link code", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": code, "expiresAt": time.Now().Add(linkCodeTTL)})
}
