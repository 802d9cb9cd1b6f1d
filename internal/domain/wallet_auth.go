package domain

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/petquest/internal/common"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/pkg/authenticator"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/questx-lab/petquest/pkg/xredis"
)

// WalletAuthDomain turns a personal_sign signature into an access token whose
// subject is the verified sender of later messages.
type WalletAuthDomain interface {
	Login(context.Context, *model.WalletLoginRequest) (*model.WalletLoginResponse, error)
	Verify(context.Context, *model.WalletVerifyRequest) (*model.WalletVerifyResponse, error)
}

type walletAuthDomain struct {
	tokenEngine authenticator.TokenEngine[model.AccessToken]
	redisClient xredis.Client
}

// NewWalletAuthDomain accepts a nil redis client, login nonces then can be
// replayed until they expire.
func NewWalletAuthDomain(
	tokenEngine authenticator.TokenEngine[model.AccessToken],
	redisClient xredis.Client,
) *walletAuthDomain {
	return &walletAuthDomain{
		tokenEngine: tokenEngine,
		redisClient: redisClient,
	}
}

func (d *walletAuthDomain) Login(
	ctx context.Context, req *model.WalletLoginRequest,
) (*model.WalletLoginResponse, error) {
	address, err := normalizeAddress(req.Address)
	if err != nil {
		return nil, err
	}

	nonce := fmt.Sprintf("%d:%s", time.Now().Unix(), uuid.NewString())
	return &model.WalletLoginResponse{
		Message: walletLoginMessage(address, nonce),
		Nonce:   nonce,
	}, nil
}

func (d *walletAuthDomain) Verify(
	ctx context.Context, req *model.WalletVerifyRequest,
) (*model.WalletVerifyResponse, error) {
	address, err := normalizeAddress(req.Address)
	if err != nil {
		return nil, err
	}

	issuedAt, _, ok := strings.Cut(req.Nonce, ":")
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Invalid nonce")
	}

	unix, err := strconv.ParseInt(issuedAt, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid nonce")
	}

	ttl := xcontext.Configs(ctx).Auth.LoginNonceTTL
	if time.Since(time.Unix(unix, 0)) > ttl {
		return nil, errorx.New(errorx.BadRequest, "Nonce is expired")
	}

	signer, err := ethutil.RecoverText([]byte(walletLoginMessage(address, req.Nonce)), req.Signature)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Cannot recover login signature: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid signature")
	}

	if signer != address {
		return nil, errorx.New(errorx.BadRequest, "Mismatched address")
	}

	if d.redisClient != nil {
		fresh, err := d.redisClient.SetNX(ctx, common.RedisKeyLoginNonce(req.Nonce), address, ttl)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot store login nonce: %v", err)
			return nil, errorx.Unknown
		}

		if !fresh {
			return nil, errorx.New(errorx.BadRequest, "Nonce is already used")
		}
	}

	accessToken, err := d.tokenEngine.Generate(address, model.AccessToken{Address: address})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.WalletVerifyResponse{AccessToken: accessToken}, nil
}

func walletLoginMessage(address, nonce string) string {
	return fmt.Sprintf("Sign in to Pet Quest\n\nAddress: %s\nNonce: %s", address, nonce)
}
