package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/pkg/authenticator"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_walletAuthDomain_LoginVerify(t *testing.T) {
	ctx := testutil.MockContext()
	tokenEngine := authenticator.NewTokenEngine[model.AccessToken]("secret", time.Minute)
	d := NewWalletAuthDomain(tokenEngine, testutil.NewMemoryRedisClient())

	login, err := d.Login(ctx, &model.WalletLoginRequest{Address: testutil.Alice})
	require.NoError(t, err)
	require.Contains(t, login.Message, login.Nonce)
	require.Contains(t, login.Message, testutil.Alice)

	signature, err := ethutil.SignText(testutil.PrivateKey("alice"), []byte(login.Message))
	require.NoError(t, err)

	verified, err := d.Verify(ctx, &model.WalletVerifyRequest{
		Address:   testutil.Alice,
		Nonce:     login.Nonce,
		Signature: signature,
	})
	require.NoError(t, err)

	token, err := tokenEngine.Verify(verified.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testutil.Alice, token.Address)

	// A nonce can only be used once.
	_, err = d.Verify(ctx, &model.WalletVerifyRequest{
		Address:   testutil.Alice,
		Nonce:     login.Nonce,
		Signature: signature,
	})
	requireErrorCode(t, err, errorx.BadRequest)
}

func Test_walletAuthDomain_Verify_Errors(t *testing.T) {
	ctx := testutil.MockContext()
	tokenEngine := authenticator.NewTokenEngine[model.AccessToken]("secret", time.Minute)

	d := NewWalletAuthDomain(tokenEngine, nil)
	login, err := d.Login(ctx, &model.WalletLoginRequest{Address: testutil.Alice})
	require.NoError(t, err)

	bobSignature, err := ethutil.SignText(testutil.PrivateKey("bob"), []byte(login.Message))
	require.NoError(t, err)

	expiredNonce := "1000:d2b5c7a0-66a4-4c1f-9f0e-0a7b1c9d2e3f"
	expiredSignature, err := ethutil.SignText(
		testutil.PrivateKey("alice"), []byte(walletLoginMessage(testutil.Alice, expiredNonce)))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *model.WalletVerifyRequest
	}{
		{
			name: "signed by someone else",
			req:  &model.WalletVerifyRequest{Address: testutil.Alice, Nonce: login.Nonce, Signature: bobSignature},
		},
		{
			name: "expired nonce",
			req:  &model.WalletVerifyRequest{Address: testutil.Alice, Nonce: expiredNonce, Signature: expiredSignature},
		},
		{
			name: "malformed nonce",
			req:  &model.WalletVerifyRequest{Address: testutil.Alice, Nonce: "nonce", Signature: bobSignature},
		},
		{
			name: "malformed signature",
			req:  &model.WalletVerifyRequest{Address: testutil.Alice, Nonce: login.Nonce, Signature: "0x1234"},
		},
		{
			name: "invalid address",
			req:  &model.WalletVerifyRequest{Address: "alice", Nonce: login.Nonce, Signature: bobSignature},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Verify(ctx, tt.req)
			requireErrorCode(t, err, errorx.BadRequest)
		})
	}
}

func Test_walletAuthDomain_Verify_RedisDown(t *testing.T) {
	ctx := testutil.MockContext()
	redisClient := &testutil.MockRedisClient{
		SetNXFunc: func(context.Context, string, string, time.Duration) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	d := NewWalletAuthDomain(authenticator.NewTokenEngine[model.AccessToken]("secret", time.Minute), redisClient)

	login, err := d.Login(ctx, &model.WalletLoginRequest{Address: testutil.Bob})
	require.NoError(t, err)

	signature, err := ethutil.SignText(testutil.PrivateKey("bob"), []byte(login.Message))
	require.NoError(t, err)

	_, err = d.Verify(ctx, &model.WalletVerifyRequest{Address: testutil.Bob, Nonce: login.Nonce, Signature: signature})
	require.Equal(t, errorx.Unknown, err)
}
