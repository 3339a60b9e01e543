package auth

import "github.com/golang-jwt/jwt/v5"

// Claims represents the identity token claims the service reads
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) principal() (*Principal, error) {
	uid := c.Subject
	if uid == "" {
		uid = c.UserID
	}
	if uid == "" {
		return nil, ErrInvalidToken
	}
	return &Principal{
		UID:    uid,
		Email:  c.Email,
		Issuer: c.Issuer,
	}, nil
}
