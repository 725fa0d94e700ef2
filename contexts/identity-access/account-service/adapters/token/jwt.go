package token

import (
	"errors"
	"time"

	"tasktrack/contexts/identity-access/account-service/ports"
	"tasktrack/internal/shared/access"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Codec signs and verifies HS256 session tokens. The validity window is
// fixed at issue time; verification rejects anything expired, tampered or
// signed with a different method.
type Codec struct {
	Secret []byte
	TTL    time.Duration
}

func (c Codec) Issue(claims ports.TokenClaims, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.ttl())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role: string(claims.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.AccountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(c.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (c Codec) Verify(tokenString string, now time.Time) (ports.TokenClaims, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return c.Secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !token.Valid {
		return ports.TokenClaims{}, errInvalidToken
	}
	if claims.Subject == "" {
		return ports.TokenClaims{}, errInvalidToken
	}
	return ports.TokenClaims{
		AccountID: claims.Subject,
		Role:      access.Role(claims.Role),
	}, nil
}

func (c Codec) ttl() time.Duration {
	if c.TTL <= 0 {
		return 8 * time.Hour
	}
	return c.TTL
}
