// Package auth issues and verifies the signed access tokens handed out on login.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/spacestar/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the member identity and role.
type Claims struct {
	jwt.RegisteredClaims
	UUID string `json:"uuid"`
	Role string `json:"role"`
}

// GenerateToken signs an HS256 token bound to identity and role that expires after ttl.
func GenerateToken(identity, role string, secretKey []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UUID: identity,
		Role: role,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// BearerToken returns GenerateToken's result with the "Bearer " prefix.
func BearerToken(identity, role string, secretKey []byte, ttl time.Duration) (string, error) {
	tok, err := GenerateToken(identity, role, secretKey, ttl)
	if err != nil {
		return "", err
	}
	return common.BearerPrefix + tok, nil
}

// ParseToken validates tokenString and returns its claims. Expired tokens
// yield common.ErrTokenExpired, any other failure common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UUID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
