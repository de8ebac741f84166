package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chat-realtime/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret, 0)
	token, err := svc.Issue("u1")
	require.NoError(t, err)

	sub, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)
}

func TestIssueSetsOneDayExpiry(t *testing.T) {
	svc := NewTokenService(testSecret, 0)
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	token, err := svc.Issue("u1")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestIssueRejectsEmptySubject(t *testing.T) {
	_, err := NewTokenService(testSecret, 0).Issue("")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestVerifyFailures(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	other := NewTokenService("other-secret", time.Hour)
	foreign, err := other.Issue("u1")
	require.NoError(t, err)

	expiredSvc := NewTokenService(testSecret, time.Hour)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.Issue("u1")
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u1",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"missing":      "",
		"malformed":    "not.a.jwt",
		"wrong secret": foreign,
		"expired":      expired,
		"no subject":   noSub,
		"no expiry":    noExp,
		"alg none":     unsigned,
	}
	for name, token := range tests {
		name, token := name, token
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, models.ErrAuthentication)
		})
	}
}

func TestExtractToken(t *testing.T) {
	t.Run("cookie wins", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws?token=query", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie"})
		r.Header.Set("Authorization", "Bearer header")
		assert.Equal(t, "cookie", ExtractToken(r))
	})
	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws?token=query", nil)
		r.Header.Set("Authorization", "Bearer header")
		assert.Equal(t, "header", ExtractToken(r))
	})
	t.Run("query fallback", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws?token=query", nil)
		assert.Equal(t, "query", ExtractToken(r))
	})
	t.Run("none", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		assert.Empty(t, ExtractToken(r))
	})
}

func TestAuthenticate(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	token, err := svc.Issue("u42")
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	sub, err := svc.Authenticate(r)
	require.NoError(t, err)
	assert.Equal(t, "u42", sub)

	_, err = svc.Authenticate(httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.ErrorIs(t, err, models.ErrAuthentication)
}
