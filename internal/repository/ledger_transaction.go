package repository

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

type LedgerTransactionRepository interface {
	Create(context.Context, *entity.LedgerTransaction) error
	GetByStatus(ctx context.Context, status entity.LedgerTransactionStatus, limit int) ([]entity.LedgerTransaction, error)
	UpdateStatus(ctx context.Context, id int64, status entity.LedgerTransactionStatus, txHash, errMsg string) error

	// SumInFlightDebits sums the amounts of not yet settled transactions of the
	// given kinds that debit the address.
	SumInFlightDebits(ctx context.Context, from string, kinds ...entity.LedgerTransactionKind) (uint64, error)
	SumInFlightCredits(ctx context.Context, to string, kinds ...entity.LedgerTransactionKind) (uint64, error)

	// GetLatestInFlightNFT returns the latest not yet settled NFT transaction of
	// the token, or nil.
	GetLatestInFlightNFT(ctx context.Context, tokenID string) (*entity.LedgerTransaction, error)
	GetInFlightNFTs(ctx context.Context) ([]entity.LedgerTransaction, error)
}

type ledgerTransactionRepository struct{}

func NewLedgerTransactionRepository() *ledgerTransactionRepository {
	return &ledgerTransactionRepository{}
}

var inFlightStatuses = []entity.LedgerTransactionStatus{
	entity.LedgerTransactionPending,
	entity.LedgerTransactionSubmitted,
}

func (r *ledgerTransactionRepository) Create(ctx context.Context, tx *entity.LedgerTransaction) error {
	return xcontext.DB(ctx).Create(tx).Error
}

func (r *ledgerTransactionRepository) GetByStatus(
	ctx context.Context, status entity.LedgerTransactionStatus, limit int,
) ([]entity.LedgerTransaction, error) {
	var result []entity.LedgerTransaction
	err := xcontext.DB(ctx).
		Where("status=?", status).
		Order("id ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ledgerTransactionRepository) UpdateStatus(
	ctx context.Context, id int64, status entity.LedgerTransactionStatus, txHash, errMsg string,
) error {
	return xcontext.DB(ctx).
		Model(&entity.LedgerTransaction{}).
		Where("id=?", id).
		Updates(map[string]any{
			"status":  status,
			"tx_hash": txHash,
			"error":   errMsg,
		}).Error
}

func (r *ledgerTransactionRepository) SumInFlightDebits(
	ctx context.Context, from string, kinds ...entity.LedgerTransactionKind,
) (uint64, error) {
	var total uint64
	err := xcontext.DB(ctx).
		Model(&entity.LedgerTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("from_address=? AND kind IN (?) AND status IN (?)", from, kinds, inFlightStatuses).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *ledgerTransactionRepository) SumInFlightCredits(
	ctx context.Context, to string, kinds ...entity.LedgerTransactionKind,
) (uint64, error) {
	var total uint64
	err := xcontext.DB(ctx).
		Model(&entity.LedgerTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("to_address=? AND kind IN (?) AND status IN (?)", to, kinds, inFlightStatuses).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *ledgerTransactionRepository) GetLatestInFlightNFT(
	ctx context.Context, tokenID string,
) (*entity.LedgerTransaction, error) {
	var result []entity.LedgerTransaction
	err := xcontext.DB(ctx).
		Where("token_id=? AND status IN (?)", tokenID, inFlightStatuses).
		Order("id DESC").
		Limit(1).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, nil
	}

	return &result[0], nil
}

func (r *ledgerTransactionRepository) GetInFlightNFTs(ctx context.Context) ([]entity.LedgerTransaction, error) {
	var result []entity.LedgerTransaction
	err := xcontext.DB(ctx).
		Where("kind IN (?) AND status IN (?)",
			[]entity.LedgerTransactionKind{entity.LedgerMintNFT, entity.LedgerBurnNFT}, inFlightStatuses).
		Order("id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
