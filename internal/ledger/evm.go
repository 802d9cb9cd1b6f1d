package ledger

import (
	"context"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

var (
	fungibleDebitKinds = []entity.LedgerTransactionKind{
		entity.LedgerTransferFrom, entity.LedgerTransfer, entity.LedgerBurnFrom,
	}
	fungibleCreditKinds = []entity.LedgerTransactionKind{
		entity.LedgerTransferFrom, entity.LedgerTransfer, entity.LedgerMint,
	}
)

// evmLedger reads the token contracts through eth_call and records every write
// as a LedgerTransaction inside the message transaction. The Dispatcher sends
// them once the message is committed. Reads account for transactions which are
// recorded but not settled yet.
type evmLedger struct {
	loot   *bind.BoundContract
	pet    *bind.BoundContract
	escrow common.Address
	txRepo repository.LedgerTransactionRepository
}

func NewEVMLedger(
	caller bind.ContractCaller,
	lootAddress, petAddress, escrow common.Address,
	txRepo repository.LedgerTransactionRepository,
) *evmLedger {
	return &evmLedger{
		loot:   bind.NewBoundContract(lootAddress, ERC20ABI, caller, nil, nil),
		pet:    bind.NewBoundContract(petAddress, ERC721ABI, caller, nil, nil),
		escrow: escrow,
		txRepo: txRepo,
	}
}

func (l *evmLedger) Escrow() string {
	return l.escrow.Hex()
}

func (l *evmLedger) Pull(ctx context.Context, owner string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	if err := l.checkSpendable(ctx, owner, amount); err != nil {
		return err
	}

	return l.record(ctx, &entity.LedgerTransaction{
		Kind:        entity.LedgerTransferFrom,
		FromAddress: owner,
		ToAddress:   l.Escrow(),
		Amount:      amount,
	})
}

func (l *evmLedger) Pay(ctx context.Context, recipient string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	balance, err := l.BalanceOf(ctx, l.Escrow())
	if err != nil {
		return err
	}

	if balance < amount {
		return unknown(ctx, "Escrow cannot pay %d to %s, balance is %d", amount, recipient, balance)
	}

	return l.record(ctx, &entity.LedgerTransaction{
		Kind:        entity.LedgerTransfer,
		FromAddress: l.Escrow(),
		ToAddress:   recipient,
		Amount:      amount,
	})
}

func (l *evmLedger) Mint(ctx context.Context, recipient string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	return l.record(ctx, &entity.LedgerTransaction{
		Kind:      entity.LedgerMint,
		ToAddress: recipient,
		Amount:    amount,
	})
}

func (l *evmLedger) Burn(ctx context.Context, owner string, amount uint64) error {
	if amount == 0 {
		return nil
	}

	if err := l.checkSpendable(ctx, owner, amount); err != nil {
		return err
	}

	return l.record(ctx, &entity.LedgerTransaction{
		Kind:        entity.LedgerBurnFrom,
		FromAddress: owner,
		Amount:      amount,
	})
}

func (l *evmLedger) BalanceOf(ctx context.Context, owner string) (uint64, error) {
	balance, err := l.callUint64(ctx, l.loot, "balanceOf", common.HexToAddress(owner))
	if err != nil {
		return 0, l.unavailable(ctx, err)
	}

	credits, err := l.txRepo.SumInFlightCredits(ctx, owner, fungibleCreditKinds...)
	if err != nil {
		return 0, unknown(ctx, "Cannot sum in-flight credits of %s: %v", owner, err)
	}

	debits, err := l.txRepo.SumInFlightDebits(ctx, owner, fungibleDebitKinds...)
	if err != nil {
		return 0, unknown(ctx, "Cannot sum in-flight debits of %s: %v", owner, err)
	}

	balance = saturatingAdd(balance, credits)
	if balance < debits {
		return 0, nil
	}

	return balance - debits, nil
}

// checkSpendable verifies that both the balance and the allowance of owner
// still cover amount once every in-flight debit settles.
func (l *evmLedger) checkSpendable(ctx context.Context, owner string, amount uint64) error {
	balance, err := l.BalanceOf(ctx, owner)
	if err != nil {
		return err
	}

	if balance < amount {
		return insufficientFunds("Balance is not enough to spend %d", amount)
	}

	allowance, err := l.callUint64(ctx, l.loot, "allowance",
		common.HexToAddress(owner), l.escrow)
	if err != nil {
		return l.unavailable(ctx, err)
	}

	spending, err := l.txRepo.SumInFlightDebits(ctx, owner, entity.LedgerTransferFrom, entity.LedgerBurnFrom)
	if err != nil {
		return unknown(ctx, "Cannot sum in-flight debits of %s: %v", owner, err)
	}

	if allowance < spending || allowance-spending < amount {
		return insufficientFunds("Allowance is not enough to spend %d", amount)
	}

	return nil
}

func (l *evmLedger) MintNFT(ctx context.Context, recipient, tokenID string) error {
	if _, err := tokenSerial(tokenID); err != nil {
		return errorx.New(errorx.BadRequest, "Invalid token id %s", tokenID)
	}

	_, err := l.OwnerOf(ctx, tokenID)
	if err == nil {
		return errorx.New(errorx.AlreadyExists, "Token %s already exists", tokenID)
	}

	if !errorx.Is(err, errorx.NotFound) {
		return err
	}

	return l.record(ctx, &entity.LedgerTransaction{
		Kind:      entity.LedgerMintNFT,
		ToAddress: recipient,
		TokenID:   tokenID,
	})
}

func (l *evmLedger) BurnNFT(ctx context.Context, tokenID string) error {
	owner, err := l.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}

	return l.record(ctx, &entity.LedgerTransaction{
		Kind:        entity.LedgerBurnNFT,
		FromAddress: owner,
		TokenID:     tokenID,
	})
}

func (l *evmLedger) OwnerOf(ctx context.Context, tokenID string) (string, error) {
	inFlight, err := l.txRepo.GetLatestInFlightNFT(ctx, tokenID)
	if err != nil {
		return "", unknown(ctx, "Cannot get in-flight transaction of %s: %v", tokenID, err)
	}

	if inFlight != nil {
		if inFlight.Kind == entity.LedgerBurnNFT {
			return "", tokenNotFound(tokenID)
		}
		return inFlight.ToAddress, nil
	}

	serial, err := tokenSerialBig(tokenID)
	if err != nil {
		return "", tokenNotFound(tokenID)
	}

	out, err := l.call(ctx, l.pet, "ownerOf", serial)
	if err != nil {
		if isReverted(err) {
			return "", tokenNotFound(tokenID)
		}
		return "", l.unavailable(ctx, err)
	}

	owner := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return owner.Hex(), nil
}

func (l *evmLedger) TokensOf(ctx context.Context, owner string) ([]string, error) {
	ownerAddress := common.HexToAddress(owner)
	count, err := l.callUint64(ctx, l.pet, "balanceOf", ownerAddress)
	if err != nil {
		return nil, l.unavailable(ctx, err)
	}

	held := map[string]bool{}
	for i := uint64(0); i < count; i++ {
		out, err := l.call(ctx, l.pet, "tokenOfOwnerByIndex", ownerAddress, new(big.Int).SetUint64(i))
		if err != nil {
			return nil, l.unavailable(ctx, err)
		}

		serial := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
		held[petTokenID(serial.Uint64())] = true
	}

	inFlight, err := l.txRepo.GetInFlightNFTs(ctx)
	if err != nil {
		return nil, unknown(ctx, "Cannot get in-flight NFT transactions: %v", err)
	}

	for _, tx := range inFlight {
		switch {
		case tx.Kind == entity.LedgerMintNFT && strings.EqualFold(tx.ToAddress, owner):
			held[tx.TokenID] = true
		case tx.Kind == entity.LedgerBurnNFT:
			delete(held, tx.TokenID)
		}
	}

	ids := []string{}
	for id := range held {
		ids = append(ids, id)
	}

	sortTokenIDs(ids)
	return ids, nil
}

func (l *evmLedger) record(ctx context.Context, tx *entity.LedgerTransaction) error {
	tx.ID = xcontext.SnowFlake(ctx).Generate().Int64()
	tx.MessageIndex = xcontext.MessageIndex(ctx)
	tx.Reference = xcontext.LedgerReference(ctx)
	tx.Status = entity.LedgerTransactionPending

	if err := l.txRepo.Create(ctx, tx); err != nil {
		return unknown(ctx, "Cannot record ledger transaction %s: %v", tx.Kind, err)
	}

	return nil
}

func (l *evmLedger) call(
	ctx context.Context, contract *bind.BoundContract, method string, params ...any,
) ([]any, error) {
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, err
	}

	return out, nil
}

func (l *evmLedger) callUint64(
	ctx context.Context, contract *bind.BoundContract, method string, params ...any,
) (uint64, error) {
	out, err := l.call(ctx, contract, method, params...)
	if err != nil {
		return 0, err
	}

	value := abi.ConvertType(out[0], new(big.Int)).(*big.Int)
	if !value.IsUint64() {
		return math.MaxUint64, nil
	}

	return value.Uint64(), nil
}

func (l *evmLedger) unavailable(ctx context.Context, err error) error {
	xcontext.Logger(ctx).Errorf("Cannot call token contract: %v", err)
	return errorx.New(errorx.Unavailable, "Ledger is unavailable")
}

func isReverted(err error) bool {
	return strings.Contains(err.Error(), "execution reverted")
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}

	return a + b
}
