package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/testutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type compensatorFunc func(ctx context.Context, tx *entity.LedgerTransaction) error

func (f compensatorFunc) Compensate(ctx context.Context, tx *entity.LedgerTransaction) error {
	return f(ctx, tx)
}

func operatorKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := OperatorKey("dispatcher-test")
	require.NoError(t, err)
	return key
}

func Test_OperatorKey(t *testing.T) {
	key := operatorKey(t)
	for i := 0; i < 20; i++ {
		require.Equal(t, crypto.PubkeyToAddress(key.PublicKey), crypto.PubkeyToAddress(operatorKey(t).PublicKey))
	}
}

func Test_Dispatcher(t *testing.T) {
	ctx := ledgerContext()
	chain := newFakeChain()
	chain.nonce = 5
	txRepo := repository.NewLedgerTransactionRepository()
	publisher := &testutil.MockPublisher{}

	l := newTestEVMLedger(ctx, chain)
	require.NoError(t, l.Mint(ctx, testutil.Bob, 5))
	require.NoError(t, l.MintNFT(ctx, testutil.Bob, "PET_3"))

	d := NewDispatcher(ctx, chain, txRepo, publisher, operatorKey(t))

	d.DispatchPending(ctx)
	require.Len(t, chain.sent, 2)

	method, err := ERC20ABI.MethodById(chain.sent[0].Data()[:4])
	require.NoError(t, err)
	require.Equal(t, "mint", method.Name)
	require.Equal(t, lootAddress, *chain.sent[0].To())
	require.Equal(t, uint64(5), chain.sent[0].Nonce())

	method, err = ERC721ABI.MethodById(chain.sent[1].Data()[:4])
	require.NoError(t, err)
	require.Equal(t, "mint", method.Name)
	require.Equal(t, petAddress, *chain.sent[1].To())
	require.Equal(t, uint64(6), chain.sent[1].Nonce())

	submitted, err := txRepo.GetByStatus(ctx, entity.LedgerTransactionSubmitted, -1)
	require.NoError(t, err)
	require.Len(t, submitted, 2)
	require.Equal(t, chain.sent[0].Hash().Hex(), submitted[0].TxHash)

	// Submitted transactions still count as in flight.
	owner, err := l.OwnerOf(ctx, "PET_3")
	require.NoError(t, err)
	require.Equal(t, testutil.Bob, owner)

	// No receipt yet.
	d.TrackSubmitted(ctx)
	require.Empty(t, publisher.Packs())

	chain.receipts[chain.sent[0].Hash()] = &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful}
	chain.receipts[chain.sent[1].Hash()] = &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed}
	d.TrackSubmitted(ctx)

	settled, err := txRepo.GetByStatus(ctx, entity.LedgerTransactionSuccess, -1)
	require.NoError(t, err)
	require.Len(t, settled, 1)
	require.Equal(t, entity.LedgerMint, settled[0].Kind)

	failed, err := txRepo.GetByStatus(ctx, entity.LedgerTransactionFailed, -1)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, entity.LedgerMintNFT, failed[0].Kind)
	require.Equal(t, "transaction reverted", failed[0].Error)

	packs := publisher.Packs()
	require.Len(t, packs, 2)

	types := []string{}
	for _, pack := range packs {
		var event model.Event
		require.NoError(t, json.Unmarshal(pack.Msg, &event))
		types = append(types, event.Type)
	}
	require.ElementsMatch(t, []string{model.EventLedgerTxSettled, model.EventLedgerTxFailed}, types)
}

func Test_Dispatcher_SendFailure(t *testing.T) {
	ctx := ledgerContext()
	chain := newFakeChain()
	chain.sendErr = errors.New("connection refused")
	txRepo := repository.NewLedgerTransactionRepository()
	publisher := &testutil.MockPublisher{}

	l := newTestEVMLedger(ctx, chain)
	require.NoError(t, l.Mint(ctx, testutil.Bob, 5))

	d := NewDispatcher(ctx, chain, txRepo, publisher, operatorKey(t))

	d.DispatchPending(ctx)

	pending, err := txRepo.GetByStatus(ctx, entity.LedgerTransactionPending, -1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Empty(t, publisher.Packs())

	// The next run delivers it.
	chain.sendErr = nil
	d.DispatchPending(ctx)
	require.Len(t, chain.sent, 1)

	pending, err = txRepo.GetByStatus(ctx, entity.LedgerTransactionPending, -1)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func Test_Dispatcher_Wake(t *testing.T) {
	ctx := ledgerContext()
	d := NewDispatcher(ctx, newFakeChain(), repository.NewLedgerTransactionRepository(),
		&testutil.MockPublisher{}, operatorKey(t))

	// Wake never blocks, extra wakes are merged.
	d.Wake()
	d.Wake()
	require.Len(t, d.wake, 1)
}

func Test_Dispatcher_RevertedPull(t *testing.T) {
	ctx := ledgerContext()
	chain := newFakeChain()
	txRepo := repository.NewLedgerTransactionRepository()
	publisher := &testutil.MockPublisher{}

	l := newTestEVMLedger(ctx, chain)
	alice := ethcommon.HexToAddress(testutil.Alice)
	chain.balances[alice] = 50
	chain.allowances[[2]ethcommon.Address{alice, l.escrow}] = 50

	reference := entity.BattleWagerReference("BATTLE_0", entity.BattleSideChallenger)
	require.NoError(t, l.Pull(xcontext.WithLedgerReference(ctx, reference), testutil.Alice, 20))
	require.NoError(t, l.Mint(ctx, testutil.Bob, 5))

	var compensated []entity.LedgerTransaction
	d := NewDispatcher(ctx, chain, txRepo, publisher, operatorKey(t))
	d.SetCompensator(compensatorFunc(func(_ context.Context, tx *entity.LedgerTransaction) error {
		compensated = append(compensated, *tx)
		return nil
	}))

	d.DispatchPending(ctx)
	require.Len(t, chain.sent, 2)

	// The player lowered the allowance after the message was accepted.
	chain.receipts[chain.sent[0].Hash()] = &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed}
	chain.receipts[chain.sent[1].Hash()] = &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful}
	d.TrackSubmitted(ctx)

	require.Len(t, compensated, 1)
	require.Equal(t, entity.LedgerTransferFrom, compensated[0].Kind)
	require.Equal(t, reference, compensated[0].Reference)
	require.Equal(t, testutil.Alice, compensated[0].FromAddress)
	require.Equal(t, uint64(20), compensated[0].Amount)

	failed, err := txRepo.GetByStatus(ctx, entity.LedgerTransactionFailed, -1)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, reference, failed[0].Reference)
}

func Test_Dispatcher_CompensationFailureKeepsRecord(t *testing.T) {
	ctx := ledgerContext()
	chain := newFakeChain()
	txRepo := repository.NewLedgerTransactionRepository()

	l := newTestEVMLedger(ctx, chain)
	require.NoError(t, l.Mint(ctx, testutil.Bob, 5))

	d := NewDispatcher(ctx, chain, txRepo, &testutil.MockPublisher{}, operatorKey(t))
	d.SetCompensator(compensatorFunc(func(context.Context, *entity.LedgerTransaction) error {
		return errors.New("battle already claimed")
	}))

	d.DispatchPending(ctx)
	require.Len(t, chain.sent, 1)
	chain.receipts[chain.sent[0].Hash()] = &ethtypes.Receipt{Status: ethtypes.ReceiptStatusFailed}

	require.NotPanics(t, func() { d.TrackSubmitted(ctx) })

	failed, err := txRepo.GetByStatus(ctx, entity.LedgerTransactionFailed, -1)
	require.NoError(t, err)
	require.Len(t, failed, 1)
}
