package shopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token minted by this server.
const DefaultSessionTTL = 30 * time.Minute

const sessionExpiredMessage = "Session token expired. Please refresh the page!"

// SessionClaims is the claim set carried by admin session tokens.
type SessionClaims struct {
	jwt.RegisteredClaims

	StoreID    int64  `json:"store_id"`
	StoreKey   string `json:"store_key,omitempty"`
	ExpireTime int64  `json:"expire_time"`
}

// TokenError is a failed verification, already shaped for the response envelope.
type TokenError struct {
	Status  int
	Message string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("session token: status=%d %s", e.Status, e.Message)
}

// SessionTokens mints and verifies HS256 session tokens signed with the app secret.
type SessionTokens struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func (s SessionTokens) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s SessionTokens) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Mint issues a token for the store that expires after the configured TTL.
func (s SessionTokens) Mint(storeID int64, storeKey string) (string, error) {
	if s.Secret == "" {
		return "", fmt.Errorf("missing api secret")
	}
	now := s.now()
	exp := now.Add(s.ttl())

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		StoreID:    storeID,
		StoreKey:   storeKey,
		ExpireTime: exp.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Secret))
}

// Verify decodes the Authorization header value. An expired token is reported
// as 401; every other decode failure is reported as 500 with the parser error.
func (s SessionTokens) Verify(header string) (*SessionClaims, *TokenError) {
	tokenString := strings.TrimSpace(header)
	if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
		tokenString = strings.TrimSpace(tokenString[7:])
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	claims := &SessionClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(s.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &TokenError{Status: http.StatusUnauthorized, Message: sessionExpiredMessage}
		}
		return nil, &TokenError{Status: http.StatusInternalServerError, Message: err.Error()}
	}
	return claims, nil
}

// RefreshWindow is how close to expiry a token must be before responses carry a new one.
const RefreshWindow = 10 * time.Minute

// NeedsRefresh reports whether a token expiring at expireTime (unix seconds) is
// inside the refresh window. Zero means the identity was not token based.
func (s SessionTokens) NeedsRefresh(expireTime int64) bool {
	return expireTime != 0 && s.now().Add(RefreshWindow).Unix() >= expireTime
}
