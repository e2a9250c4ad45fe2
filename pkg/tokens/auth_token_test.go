package tokens

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	tok, exp, err := IssueAuthToken(secret, 42, "alice", "user", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(24*time.Hour), exp, time.Second)

	claims, err := AuthClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)
	assert.False(t, claims.IsAdmin())
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _, err := IssueAuthToken(secret, 1, "bob", "admin", time.Now())
	require.NoError(t, err)

	_, err = AuthClaimsFromToken(tok, []byte("another-secret-another-secret-xx"))
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, _, err := IssueAuthToken(secret, 1, "bob", "user", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	_, err = AuthClaimsFromToken(tok, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := AuthClaims{
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = AuthClaimsFromToken(tok, secret)
	require.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = AuthClaimsFromToken(none, secret)
	require.Error(t, err)
}

func TestCookies(t *testing.T) {
	c := CreateCookie(AuthCookieName, "v", "/", time.Now().Add(AuthTTL), true)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.InDelta(t, 86400, c.MaxAge, 2)

	d := DeleteCookie(AuthCookieName, "/", true)
	assert.Equal(t, -1, d.MaxAge)
	assert.Empty(t, d.Value)
}
