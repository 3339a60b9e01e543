package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SecretVerifier validates HS256 tokens signed with a shared secret
type SecretVerifier struct {
	secretKey []byte
	issuer    string
	audience  string
}

// NewSecretVerifier creates a verifier for tokens signed with secretKey.
// Empty issuer or audience disables the corresponding check.
func NewSecretVerifier(secretKey, issuer, audience string) *SecretVerifier {
	return &SecretVerifier{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		audience:  audience,
	}
}

// Verify parses and validates a token, returning its principal if valid
func (v *SecretVerifier) Verify(_ context.Context, tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secretKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims.principal()
}
