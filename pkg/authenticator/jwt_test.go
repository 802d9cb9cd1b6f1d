package authenticator_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/questx-lab/petquest/pkg/authenticator"
	"github.com/stretchr/testify/require"
)

type token struct {
	Address string `json:"address"`
}

func TestJWT(t *testing.T) {
	engine := authenticator.NewTokenEngine[token]("secret", time.Minute)
	s, err := engine.Generate("0xabc", token{Address: "0xabc"})
	require.NoError(t, err)

	obj, err := engine.Verify(s)
	require.NoError(t, err)
	require.Equal(t, "0xabc", obj.Address)
}

func TestJWTWrongSecret(t *testing.T) {
	engine := authenticator.NewTokenEngine[token]("secret", time.Minute)
	s, err := engine.Generate("0xabc", token{Address: "0xabc"})
	require.NoError(t, err)

	other := authenticator.NewTokenEngine[token]("other-secret", time.Minute)
	_, err = other.Verify(s)
	require.Error(t, err)
}

func TestJWTExpiration(t *testing.T) {
	engine := authenticator.NewTokenEngine[token]("secret", -time.Minute)
	s, err := engine.Generate("0xabc", token{Address: "0xabc"})
	require.NoError(t, err)

	_, err = engine.Verify(s)
	require.Error(t, err)
}

func TestJWTRejectsForeignIssuer(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "0xabc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	engine := authenticator.NewTokenEngine[token]("secret", time.Minute)
	_, err = engine.Verify(s)
	require.ErrorIs(t, err, authenticator.ErrInvalidToken)
}

func TestJWTRejectsOtherAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    "petquest",
		Subject:   "0xabc",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	engine := authenticator.NewTokenEngine[token]("secret", time.Minute)
	_, err = engine.Verify(s)
	require.Error(t, err)
}
