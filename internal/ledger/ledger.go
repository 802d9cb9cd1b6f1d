// Package ledger moves value between players and the engine. The engine never
// keeps balances of its own: every fungible or non fungible effect goes through
// a Bridge, backed either by local tables or by the external token contracts.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"golang.org/x/exp/slices"
)

// FungibleToken is the LOOT token.
type FungibleToken interface {
	// Pull moves amount from owner into the escrow, spending the allowance the
	// owner granted to the engine.
	Pull(ctx context.Context, owner string, amount uint64) error

	// Pay moves amount from the escrow to recipient.
	Pay(ctx context.Context, recipient string, amount uint64) error

	// Mint creates amount new tokens for recipient.
	Mint(ctx context.Context, recipient string, amount uint64) error

	// Burn destroys amount tokens of owner, spending the allowance the owner
	// granted to the engine.
	Burn(ctx context.Context, owner string, amount uint64) error

	BalanceOf(ctx context.Context, owner string) (uint64, error)

	// Escrow is the address holding the wagers of running battles.
	Escrow() string
}

// NonFungibleToken is the PET token. Its token ids are the pet ids.
type NonFungibleToken interface {
	MintNFT(ctx context.Context, recipient, tokenID string) error
	BurnNFT(ctx context.Context, tokenID string) error
	OwnerOf(ctx context.Context, tokenID string) (string, error)
	TokensOf(ctx context.Context, owner string) ([]string, error)
}

type Bridge interface {
	FungibleToken
	NonFungibleToken
}

func insufficientFunds(format string, a ...any) error {
	return errorx.New(errorx.InsufficientFunds, format, a...)
}

func tokenNotFound(tokenID string) error {
	return errorx.New(errorx.NotFound, "Token %s does not exist", tokenID)
}

func unknown(ctx context.Context, format string, a ...any) error {
	xcontext.Logger(ctx).Errorf(format, a...)
	return errorx.Unknown
}

// tokenSerial returns the numeric part of a pet id, it is the token id on
// chain.
func tokenSerial(tokenID string) (uint64, error) {
	serial, ok := strings.CutPrefix(tokenID, "PET_")
	if !ok {
		return 0, fmt.Errorf("invalid token id %s", tokenID)
	}

	return strconv.ParseUint(serial, 10, 64)
}

func tokenSerialBig(tokenID string) (*big.Int, error) {
	serial, err := tokenSerial(tokenID)
	if err != nil {
		return nil, err
	}

	return new(big.Int).SetUint64(serial), nil
}

func sortTokenIDs(ids []string) {
	slices.SortFunc(ids, func(a, b string) bool {
		sa, errA := tokenSerial(a)
		sb, errB := tokenSerial(b)
		if errA != nil || errB != nil {
			return a < b
		}
		return sa < sb
	})
}

func petTokenID(serial uint64) string {
	return entity.PetID(serial)
}

// OperatorKey is the key signing every ledger transaction. Its address is the
// escrow of the EVM backend.
func OperatorKey(secret string) (*ecdsa.PrivateKey, error) {
	return ethutil.GeneratePrivateKey([]byte(secret), nil)
}
