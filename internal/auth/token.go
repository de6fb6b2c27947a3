package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kamilakurskaa/TrustFlow/internal/domain"
)

// TokenIssuer issues and resolves HS256-signed bearer tokens carrying a
// subject (user id) and an absolute expiry. Stateless per call.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with the given signing secret and default TTL
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue encodes the user id and expiry into a signed token
func (i *TokenIssuer) Issue(userID uint64) (string, error) {
	return i.IssueWithTTL(userID, i.ttl)
}

// IssueWithTTL encodes the user id with an explicit TTL overriding the default
func (i *TokenIssuer) IssueWithTTL(userID uint64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Resolve validates the token and returns its subject user id.
// Returns domain.ErrExpiredToken for expired tokens and
// domain.ErrMalformedToken for any signature or structural failure.
func (i *TokenIssuer) Resolve(tokenString string) (uint64, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domain.ErrExpiredToken
		}
		return 0, domain.ErrMalformedToken
	}
	if !token.Valid || claims.Subject == "" {
		return 0, domain.ErrMalformedToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrMalformedToken
	}
	return userID, nil
}
