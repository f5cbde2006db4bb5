package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for expired, tampered or otherwise
// unparseable session tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the standard claims plus the authenticated user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// TokenService issues and verifies signed, time-bounded session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService builds a TokenService signing with the given secret.
// Tokens expire ttl after issuance.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token asserting the identity userID.
func (s *TokenService) Issue(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the asserted user ID.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
