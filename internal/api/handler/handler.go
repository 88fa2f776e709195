// Package handler exposes the realtime core over HTTP: login, the websocket endpoint and
// the REST mirrors of the notification and conversation events.
package handler

import (
	"campuscart/backend/internal/auth"
	"campuscart/backend/internal/chathub"
	"campuscart/backend/internal/localization"
	"campuscart/backend/internal/notify"
	"campuscart/backend/internal/roommate"
	"campuscart/backend/internal/storage"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Deps are the collaborators a Handler serves.
type Deps struct {
	Hub            *chathub.ManagerService
	Storage        storage.Storage
	Tokens         *auth.TokenManager
	Notify         *notify.Dispatcher
	Matcher        *roommate.MatcherService
	Localizer      *localization.Localizer
	Log            *zap.Logger
	AllowedOrigins []string
}

// Handler містить посилання на ChatHub та сервіси
type Handler struct {
	Hub       *chathub.ManagerService
	Storage   storage.Storage
	Tokens    *auth.TokenManager
	Auth      *auth.Authenticator
	Notify    *notify.Dispatcher
	Matcher   *roommate.MatcherService
	Localizer *localization.Localizer

	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		Hub:       d.Hub,
		Storage:   d.Storage,
		Tokens:    d.Tokens,
		Auth:      auth.NewAuthenticator(d.Tokens, d.Storage),
		Notify:    d.Notify,
		Matcher:   d.Matcher,
		Localizer: d.Localizer,
		log:       d.Log.Named("http"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Subprotocols:    []string{auth.Subprotocol},
		CheckOrigin:     checkOrigin(d.AllowedOrigins),
	}
	return h
}

// checkOrigin allows any origin when none are configured.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		return slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, origin) })
	}
}

// language picks the primary tag of Accept-Language for unauthenticated responses.
func language(c *gin.Context) string {
	header := c.GetHeader("Accept-Language")
	if i := strings.IndexAny(header, ",;"); i >= 0 {
		header = header[:i]
	}
	if header = strings.TrimSpace(header); header != "" {
		return header
	}
	return localization.DefaultLanguage
}

// abort writes the {error, code} body every failed request carries.
func (h *Handler) abort(c *gin.Context, status int, code, key string) {
	lang := language(c)
	if u := currentUser(c); u != nil {
		lang = u.Language
	}
	c.AbortWithStatusJSON(status, gin.H{"error": h.Localizer.GetString(lang, key), "code": code})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	_ = c.Error(err)
	h.abort(c, http.StatusInternalServerError, "INTERNAL", "error.internal")
}
