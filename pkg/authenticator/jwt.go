package authenticator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const issuer = "petquest"

var ErrInvalidToken = errors.New("invalid token")

type sessionClaims[T any] struct {
	jwt.RegisteredClaims
	Session T `json:"session,omitempty"`
}

type hmacTokenEngine[T any] struct {
	secret     []byte
	expiration time.Duration
	parser     *jwt.Parser
}

// NewTokenEngine returns a TokenEngine signing HS256 session tokens. The
// subject of every token is the wallet address the session belongs to.
func NewTokenEngine[T any](secret string, expiration time.Duration) TokenEngine[T] {
	return &hmacTokenEngine[T]{
		secret:     []byte(secret),
		expiration: expiration,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (e *hmacTokenEngine[T]) Generate(sub string, session T) (string, error) {
	now := time.Now()
	claims := sessionClaims[T]{
		Session: session,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.expiration)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.secret)
}

func (e *hmacTokenEngine[T]) Verify(token string) (T, error) {
	var claims sessionClaims[T]
	_, err := e.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return e.secret, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	if !claims.VerifyIssuer(issuer, true) || claims.Subject == "" {
		var zero T
		return zero, fmt.Errorf("%w: unexpected issuer or empty subject", ErrInvalidToken)
	}

	return claims.Session, nil
}
