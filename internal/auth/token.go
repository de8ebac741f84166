package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chat-realtime/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the cookie the identity token travels in
	CookieName = "jwt"

	defaultTTL = 24 * time.Hour
	issuer     = "chat-realtime"
)

// TokenService verifies identity tokens. Issue exists for the external
// login flow and for tests; this service never authenticates credentials.
type TokenService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &TokenService{
		secretKey: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue signs an HS256 token whose subject is userID
func (s *TokenService) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: empty subject", models.ErrValidation)
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
}

// Verify checks signature and expiry and returns the token subject.
// All failures wrap models.ErrAuthentication.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", fmt.Errorf("%w: no token", models.ErrAuthentication)
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("%w: token expired", models.ErrAuthentication)
		}
		return "", fmt.Errorf("%w: %v", models.ErrAuthentication, err)
	}
	if !token.Valid {
		return "", fmt.Errorf("%w: invalid token", models.ErrAuthentication)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject not found in token", models.ErrAuthentication)
	}
	return claims.Subject, nil
}

// ExtractToken pulls the identity token from the jwt cookie, then the
// Authorization bearer header, then the token query parameter.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimPrefix(r.URL.Query().Get("token"), "Bearer ")
}

// Authenticate runs the full handshake check on an incoming request
func (s *TokenService) Authenticate(r *http.Request) (string, error) {
	return s.Verify(ExtractToken(r))
}
