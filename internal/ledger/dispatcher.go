package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/questx-lab/petquest/internal/common"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/pubsub"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

type EthClient interface {
	bind.ContractBackend
	TransactionReceipt(ctx context.Context, txHash ethcommon.Hash) (*ethtypes.Receipt, error)
}

// Compensator undoes the game effects of a sub-message that failed on chain.
type Compensator interface {
	Compensate(ctx context.Context, tx *entity.LedgerTransaction) error
}

// Dispatcher delivers recorded ledger transactions to the token contracts and
// runs their continuations once the receipt is known.
type Dispatcher struct {
	client     EthClient
	txRepo     repository.LedgerTransactionRepository
	publisher  pubsub.Publisher
	loot       *bind.BoundContract
	pet        *bind.BoundContract
	chainID    *big.Int
	privateKey *ecdsa.PrivateKey
	compensate Compensator
	wake       chan struct{}
}

func NewDispatcher(
	ctx context.Context,
	client EthClient,
	txRepo repository.LedgerTransactionRepository,
	publisher pubsub.Publisher,
	privateKey *ecdsa.PrivateKey,
) *Dispatcher {
	cfg := xcontext.Configs(ctx).Ledger
	return &Dispatcher{
		client:     client,
		txRepo:     txRepo,
		publisher:  publisher,
		loot:       bind.NewBoundContract(ethcommon.HexToAddress(cfg.LootAddress), ERC20ABI, client, client, client),
		pet:        bind.NewBoundContract(ethcommon.HexToAddress(cfg.PetAddress), ERC721ABI, client, client, client),
		chainID:    big.NewInt(cfg.ChainID),
		privateKey: privateKey,
		wake:       make(chan struct{}, 1),
	}
}

// SetCompensator installs the failure continuation. Without one failed
// sub-messages are only recorded and published.
func (d *Dispatcher) SetCompensator(c Compensator) {
	d.compensate = c
}

// Wake makes the dispatcher run as soon as possible instead of waiting for the
// next tick.
func (d *Dispatcher) Wake() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	interval := xcontext.Configs(ctx).Ledger.DispatchInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		d.DispatchPending(ctx)
		d.TrackSubmitted(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.wake:
		}
	}
}

// DispatchPending signs and sends pending transactions in the order they were
// recorded. It stops at the first transport failure and retries on the next
// run so that the order is kept.
func (d *Dispatcher) DispatchPending(ctx context.Context) {
	batchSize := xcontext.Configs(ctx).Ledger.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	pending, err := d.txRepo.GetByStatus(ctx, entity.LedgerTransactionPending, batchSize)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending ledger transactions: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	from := crypto.PubkeyToAddress(d.privateKey.PublicKey)
	nonce, err := d.client.PendingNonceAt(ctx, from)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get pending nonce: %v", err)
		return
	}

	gasPrice, err := d.client.SuggestGasPrice(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot suggest gas price: %v", err)
		return
	}

	for _, tx := range pending {
		signedTx, err := d.signedTx(ctx, &tx, nonce, gasPrice)
		if err != nil {
			d.fail(ctx, &tx, "", err)
			continue
		}

		if err := d.client.SendTransaction(ctx, signedTx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot send ledger transaction %d: %v", tx.ID, err)
			return
		}

		nonce++
		hash := signedTx.Hash().Hex()
		err = d.txRepo.UpdateStatus(ctx, tx.ID, entity.LedgerTransactionSubmitted, hash, "")
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update ledger transaction %d: %v", tx.ID, err)
			return
		}

		common.PromCounters[common.LedgerTransactionTotal].WithLabelValues(string(tx.Kind)).Inc()
		xcontext.Logger(ctx).Infof("Submitted ledger transaction %d (%s) with hash %s", tx.ID, tx.Kind, hash)
	}
}

// TrackSubmitted checks receipts of submitted transactions and runs their
// continuation.
func (d *Dispatcher) TrackSubmitted(ctx context.Context) {
	submitted, err := d.txRepo.GetByStatus(ctx, entity.LedgerTransactionSubmitted, -1)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get submitted ledger transactions: %v", err)
		return
	}

	for _, tx := range submitted {
		receipt, err := d.client.TransactionReceipt(ctx, ethcommon.HexToHash(tx.TxHash))
		if err != nil {
			if !errors.Is(err, ethereum.NotFound) {
				xcontext.Logger(ctx).Warnf("Cannot get receipt of %s: %v", tx.TxHash, err)
			}
			continue
		}

		if receipt.Status != ethtypes.ReceiptStatusSuccessful {
			d.fail(ctx, &tx, tx.TxHash, errors.New("transaction reverted"))
			continue
		}

		err = d.txRepo.UpdateStatus(ctx, tx.ID, entity.LedgerTransactionSuccess, tx.TxHash, "")
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update ledger transaction %d: %v", tx.ID, err)
			continue
		}

		d.publish(ctx, model.EventLedgerTxSettled, &tx, tx.TxHash, "")
	}
}

func (d *Dispatcher) signedTx(
	ctx context.Context, tx *entity.LedgerTransaction, nonce uint64, gasPrice *big.Int,
) (*ethtypes.Transaction, error) {
	opts := d.transactionOpts(ctx, nonce, gasPrice)
	amount := new(big.Int).SetUint64(tx.Amount)

	switch tx.Kind {
	case entity.LedgerTransferFrom:
		return d.loot.Transact(opts, "transferFrom",
			ethcommon.HexToAddress(tx.FromAddress), ethcommon.HexToAddress(tx.ToAddress), amount)
	case entity.LedgerTransfer:
		return d.loot.Transact(opts, "transfer", ethcommon.HexToAddress(tx.ToAddress), amount)
	case entity.LedgerMint:
		return d.loot.Transact(opts, "mint", ethcommon.HexToAddress(tx.ToAddress), amount)
	case entity.LedgerBurnFrom:
		return d.loot.Transact(opts, "burnFrom", ethcommon.HexToAddress(tx.FromAddress), amount)
	case entity.LedgerMintNFT, entity.LedgerBurnNFT:
		serial, err := tokenSerialBig(tx.TokenID)
		if err != nil {
			return nil, err
		}

		if tx.Kind == entity.LedgerMintNFT {
			return d.pet.Transact(opts, "mint", ethcommon.HexToAddress(tx.ToAddress), serial)
		}
		return d.pet.Transact(opts, "burn", serial)
	}

	return nil, fmt.Errorf("unsupported ledger transaction kind %s", tx.Kind)
}

func (d *Dispatcher) transactionOpts(
	ctx context.Context, nonce uint64, gasPrice *big.Int,
) *bind.TransactOpts {
	return &bind.TransactOpts{
		From: crypto.PubkeyToAddress(d.privateKey.PublicKey),
		Signer: func(a ethcommon.Address, t *ethtypes.Transaction) (*ethtypes.Transaction, error) {
			return ethtypes.SignTx(t, ethtypes.NewEIP155Signer(d.chainID), d.privateKey)
		},
		Nonce:    new(big.Int).SetUint64(nonce),
		GasPrice: gasPrice,
		GasLimit: xcontext.Configs(ctx).Ledger.GasLimit,
		Value:    ethcommon.Big0,
		Context:  ctx,
		NoSend:   true,
	}
}

func (d *Dispatcher) fail(ctx context.Context, tx *entity.LedgerTransaction, txHash string, cause error) {
	common.PromCounters[common.LedgerTransactionFailure].WithLabelValues(string(tx.Kind)).Inc()
	xcontext.Logger(ctx).Errorf("Ledger transaction %d (%s) failed: %v", tx.ID, tx.Kind, cause)

	err := d.txRepo.UpdateStatus(ctx, tx.ID, entity.LedgerTransactionFailed, txHash, cause.Error())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update ledger transaction %d: %v", tx.ID, err)
		return
	}

	d.publish(ctx, model.EventLedgerTxFailed, tx, txHash, cause.Error())

	if d.compensate == nil {
		return
	}

	if err := d.compensate.Compensate(ctx, tx); err != nil {
		xcontext.Logger(ctx).Errorf(
			"Cannot compensate ledger transaction %d (%s), it needs reconciliation: %v", tx.ID, tx.Reference, err)
	}
}

func (d *Dispatcher) publish(
	ctx context.Context, eventType string, tx *entity.LedgerTransaction, txHash, errMsg string,
) {
	event := model.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		MessageIndex: tx.MessageIndex,
		Time:         time.Now().UTC().Format(model.DefaultTimeLayout),
		Data: model.LedgerTxEventData{
			ID:     tx.ID,
			Kind:   string(tx.Kind),
			TxHash: txHash,
			Error:  errMsg,
		},
	}

	b, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal event: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.EventsTopic
	err = d.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(event.ID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot publish event %s: %v", eventType, err)
	}
}
