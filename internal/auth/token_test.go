package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret", "campuscart", time.Hour)

	token, exp, err := m.Issue("user-1", "student")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "student", claims.Role)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager("test-secret", "campuscart", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.Issue("user-1", "student")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_Invalid(t *testing.T) {
	m := NewTokenManager("test-secret", "campuscart", time.Hour)
	other := NewTokenManager("other-secret", "campuscart", time.Hour)
	wrongIssuer := NewTokenManager("test-secret", "someone-else", time.Hour)

	foreign, _, _ := other.Issue("user-1", "student")
	misissued, _, _ := wrongIssuer.Issue("user-1", "student")
	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "campuscart"},
	}).SignedString([]byte("test-secret"))
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "campuscart", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))

	tests := map[string]string{
		"garbage":        "not-a-jwt",
		"wrong secret":   foreign,
		"wrong issuer":   misissued,
		"no expiry":      noExp,
		"no user claims": noUser,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
