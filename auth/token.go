package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySubject is returned when a token is requested for no subject.
	ErrEmptySubject = errors.New("token subject must not be empty")

	// ErrInvalidToken covers malformed tokens, bad signatures, and
	// expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenManager issues and verifies HS256-signed bearer tokens whose
// subject is the user's email.
type TokenManager struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenManager returns a manager signing with secret and issuing
// tokens valid for lifetime.
func NewTokenManager(secret string, lifetime time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), lifetime: lifetime}
}

// Issue creates a signed token for subject with issued-at now and
// expiry now+lifetime.
func (m *TokenManager) Issue(subject string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// parse verifies the signature, signing method, and expiry, returning
// the embedded claims.
func (m *TokenManager) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Subject returns the subject of a valid token, or ErrInvalidToken.
func (m *TokenManager) Subject(tokenString string) (string, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// IsExpired reports whether the token's expiry has passed. Malformed
// or otherwise unverifiable tokens count as expired.
func (m *TokenManager) IsExpired(tokenString string) bool {
	claims, err := m.parse(tokenString)
	if err != nil {
		return true
	}
	return claims.ExpiresAt != nil && !time.Now().Before(claims.ExpiresAt.Time)
}

// Validate reports whether the token is well-signed, unexpired, and
// bound to expectedSubject.
func (m *TokenManager) Validate(tokenString, expectedSubject string) bool {
	claims, err := m.parse(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == expectedSubject
}
