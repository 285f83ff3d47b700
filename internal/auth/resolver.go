package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the caller extracted from a verified bearer token.
type Identity struct {
	UserID string
	Email  *string
}

// Resolver verifies a raw bearer token and returns the caller's identity.
type Resolver interface {
	Resolve(token string) (*Identity, error)
}

// JWTResolver validates HS256 tokens issued by the identity provider. The
// subject claim carries the stable user ID; email is optional.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (r *JWTResolver) Resolve(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	identity := &Identity{UserID: sub}
	if email, ok := claims["email"].(string); ok && email != "" {
		identity.Email = &email
	}

	return identity, nil
}
