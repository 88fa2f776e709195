// Package auth verifies bearer tokens and resolves them to an active user, both for the
// websocket handshake and for authenticated REST routes.
package auth

import (
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage"
	"context"
	"errors"
	"net/http"
	"strings"
)

type FailureCode string

const (
	TokenMissing    FailureCode = "TOKEN_MISSING"
	TokenExpired    FailureCode = "TOKEN_EXPIRED"
	TokenInvalid    FailureCode = "TOKEN_INVALID"
	UserNotFound    FailureCode = "USER_NOT_FOUND"
	AccountInactive FailureCode = "ACCOUNT_INACTIVE"
)

// AuthError is a rejected authentication attempt. None of them are retried; the client must
// obtain a fresh token and reconnect.
type AuthError struct {
	Code FailureCode
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Err.Error()
	}
	return string(e.Code)
}

func (e *AuthError) Unwrap() error { return e.Err }

// MessageKey is the localization key of the human-readable rejection message.
func (e *AuthError) MessageKey() string {
	return "auth." + strings.ToLower(string(e.Code))
}

// CodeOf extracts the failure code from err, or "" when err is not an *AuthError.
func CodeOf(err error) FailureCode {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

type Authenticator struct {
	tokens *TokenManager
	users  storage.Users
}

func NewAuthenticator(tokens *TokenManager, users storage.Users) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate resolves a bearer token to the identity of an active user. It only reads.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, &AuthError{Code: TokenMissing}
	}

	claims, err := a.tokens.Parse(token)
	switch {
	case errors.Is(err, ErrTokenExpired):
		return nil, &AuthError{Code: TokenExpired, Err: err}
	case err != nil:
		return nil, &AuthError{Code: TokenInvalid, Err: err}
	}

	user, err := a.users.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &AuthError{Code: UserNotFound, Err: err}
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, &AuthError{Code: AccountInactive}
	}
	return user, nil
}

// Subprotocol is the websocket subprotocol name used to carry the token from browsers, which
// cannot set headers on a websocket handshake: Sec-WebSocket-Protocol: bearer, <token>.
const Subprotocol = "bearer"

// TokenFromRequest extracts the credential from the handshake auth field
// (Sec-WebSocket-Protocol), the token query parameter, or the Authorization header.
func TokenFromRequest(r *http.Request) string {
	if protos := websocketProtocols(r); len(protos) == 2 && protos[0] == Subprotocol {
		return protos[1]
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return BearerToken(r.Header.Get("Authorization"))
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header value.
func BearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func websocketProtocols(r *http.Request) []string {
	var protos []string
	for _, h := range r.Header.Values("Sec-WebSocket-Protocol") {
		for _, p := range strings.Split(h, ",") {
			if p = strings.TrimSpace(p); p != "" {
				protos = append(protos, p)
			}
		}
	}
	return protos
}
