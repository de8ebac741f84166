package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"chat-realtime/internal/models"
	"chat-realtime/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey          = "user_id"
	ServiceTokenHeader = "X-Service-Token"
)

// RequestAuthenticator resolves the user behind a request
type RequestAuthenticator interface {
	Authenticate(r *http.Request) (string, error)
}

type AuthMiddleware struct {
	auth RequestAuthenticator
}

func NewAuthMiddleware(auth RequestAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth rejects requests without a valid token and stores the
// token subject under UserIDKey
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := am.auth.Authenticate(c.Request)
		if err != nil {
			c.Set("error", err.Error())
			response.Error(c, err)
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated user set by RequireAuth
func GetUserID(c *gin.Context) (string, error) {
	userID := c.GetString(UserIDKey)
	if userID == "" {
		return "", fmt.Errorf("no user in request context: %w", models.ErrAuthentication)
	}
	return userID, nil
}

// RequireServiceToken admits only callers presenting the shared service
// credential in ServiceTokenHeader. User tokens are not accepted.
func RequireServiceToken(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(ServiceTokenHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			response.Error(c, fmt.Errorf("invalid service token: %w", models.ErrAuthentication))
			return
		}
		c.Next()
	}
}
