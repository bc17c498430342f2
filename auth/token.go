// Package auth issues and validates the bearer tokens that protect the
// session operator API (spec.md §6.6's control surface), not end-user trading
// accounts.
package auth

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtKey = []byte(os.Getenv("ADMIN_JWT_SECRET"))

func init() {
	if len(jwtKey) == 0 {
		jwtKey = []byte("dev-admin-jwt-secret-do-not-use-in-prod")
	}
}

// Claims identifies the operator holding the token and the scope they were
// issued for; role gates access to mutating admin endpoints (e.g. forced
// reconnect) versus read-only status endpoints.
type Claims struct {
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateOperatorToken issues a token for an operator using the global
// ADMIN_JWT_SECRET-derived key.
func GenerateOperatorToken(operatorID, role string) (string, error) {
	return GenerateOperatorTokenWithSecret(operatorID, role, jwtKey)
}

// GenerateOperatorTokenWithSecret issues a token for an operator using a
// caller-supplied secret, so adminapi can test signing without touching the
// process-global key.
func GenerateOperatorTokenWithSecret(operatorID, role string, secret []byte) (string, error) {
	expirationTime := time.Now().Add(12 * time.Hour)
	claims := &Claims{
		OperatorID: operatorID,
		Role:       role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "hotfix-adminapi",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims if valid
func ValidateToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	return claims, nil
}

// ValidateTokenWithDefault validates a JWT token using the global secret
func ValidateTokenWithDefault(tokenString string) (*Claims, error) {
	return ValidateToken(tokenString, jwtKey)
}
