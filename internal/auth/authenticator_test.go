package auth_test

import (
	"campuscart/backend/internal/auth"
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage/storagetest"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticate(t *testing.T) {
	s, _ := storagetest.New(t)
	tokens := auth.NewTokenManager("secret", "campuscart", time.Hour)
	expiredTokens := auth.NewTokenManager("secret", "campuscart", -time.Minute)
	a := auth.NewAuthenticator(tokens, s)

	active := storagetest.SeedUser(t, s, "ana")
	suspended := storagetest.SeedUser(t, s, "bo", storagetest.WithStatus(models.StatusSuspended))

	valid, _, _ := tokens.Issue(active.ID, active.Role)
	expired, _, _ := expiredTokens.Issue(active.ID, active.Role)
	ghost, _, _ := tokens.Issue("no-such-user", "student")
	inactive, _, _ := tokens.Issue(suspended.ID, suspended.Role)

	user, err := a.Authenticate(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, active.ID, user.ID)

	tests := []struct {
		name  string
		token string
		want  auth.FailureCode
	}{
		{"missing", "", auth.TokenMissing},
		{"blank", "   ", auth.TokenMissing},
		{"expired", expired, auth.TokenExpired},
		{"invalid", "abc.def.ghi", auth.TokenInvalid},
		{"unknown user", ghost, auth.UserNotFound},
		{"inactive account", inactive, auth.AccountInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := a.Authenticate(context.Background(), tt.token)
			assert.Nil(t, user)
			assert.Equal(t, tt.want, auth.CodeOf(err))
		})
	}
}

func TestAuthErrorMessageKey(t *testing.T) {
	err := &auth.AuthError{Code: auth.AccountInactive}
	assert.Equal(t, "auth.account_inactive", err.MessageKey())
	assert.Equal(t, "ACCOUNT_INACTIVE", err.Error())
	assert.Equal(t, auth.FailureCode(""), auth.CodeOf(assert.AnError))
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	assert.Empty(t, auth.TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", auth.TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/ws?token=query-token", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "query-token", auth.TokenFromRequest(r), "query wins over header")

	r = httptest.NewRequest("GET", "/ws?token=query-token", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "bearer, proto-token")
	assert.Equal(t, "proto-token", auth.TokenFromRequest(r), "auth field wins")

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "chat")
	assert.Empty(t, auth.TokenFromRequest(r))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", auth.BearerToken("Bearer abc"))
	assert.Equal(t, "abc", auth.BearerToken("bearer abc"))
	assert.Empty(t, auth.BearerToken("Basic abc"))
	assert.Empty(t, auth.BearerToken("Bearer"))
}
