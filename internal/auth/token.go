package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every way a session token can fail to parse:
// bad signature, wrong algorithm, expiry, or malformed claims.
var ErrInvalidToken = errors.New("invalid session token")

// Tokens issues and verifies the HS256 session tokens handed to the client
// after signup, login, or a provider sign-in.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens builds a token service. ttlHours below 1 defaults to 72.
func NewTokens(secret string, ttlHours int) *Tokens {
	if ttlHours < 1 {
		ttlHours = 72
	}
	return &Tokens{
		secret: []byte(secret),
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

// Issue signs a token carrying the user id and email.
func (t *Tokens) Issue(userID int64, email string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   now.Add(t.ttl).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify parses a token and returns the user id it was issued for.
func (t *Tokens) Verify(token string) (int64, error) {
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// JWT numbers decode as float64.
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}
	return int64(sub), nil
}
