package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotEnough is returned when a balance or an allowance cannot cover a
// decrease.
var ErrNotEnough = errors.New("not enough")

type LedgerRepository interface {
	GetBalance(ctx context.Context, address string) (uint64, error)
	IncreaseBalance(ctx context.Context, address string, amount uint64) error
	DecreaseBalance(ctx context.Context, address string, amount uint64) error
	TotalSupply(ctx context.Context) (uint64, error)

	GetAllowance(ctx context.Context, owner, spender string) (uint64, error)
	SetAllowance(ctx context.Context, owner, spender string, amount uint64) error
	DecreaseAllowance(ctx context.Context, owner, spender string, amount uint64) error

	CreatePetToken(context.Context, *entity.PetToken) error
	GetPetToken(ctx context.Context, tokenID string) (*entity.PetToken, error)
	GetPetTokensByOwner(ctx context.Context, owner string) ([]entity.PetToken, error)
	DeletePetToken(ctx context.Context, tokenID string) error
}

type ledgerRepository struct{}

func NewLedgerRepository() *ledgerRepository {
	return &ledgerRepository{}
}

func (r *ledgerRepository) GetBalance(ctx context.Context, address string) (uint64, error) {
	var result entity.TokenBalance
	err := xcontext.DB(ctx).Take(&result, "address=?", address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return result.Amount, nil
}

func (r *ledgerRepository) IncreaseBalance(ctx context.Context, address string, amount uint64) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "address"}},
			DoUpdates: clause.Assignments(map[string]any{
				"amount": gorm.Expr("token_balances.amount + ?", amount),
			}),
		}).
		Create(&entity.TokenBalance{Address: address, Amount: amount}).Error
}

func (r *ledgerRepository) DecreaseBalance(ctx context.Context, address string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.TokenBalance{}).
		Where("address=? AND amount>=?", address, amount).
		Update("amount", gorm.Expr("amount - ?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 && amount > 0 {
		return ErrNotEnough
	}

	return nil
}

func (r *ledgerRepository) TotalSupply(ctx context.Context) (uint64, error) {
	var total uint64
	err := xcontext.DB(ctx).
		Model(&entity.TokenBalance{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *ledgerRepository) GetAllowance(ctx context.Context, owner, spender string) (uint64, error) {
	var result entity.TokenAllowance
	err := xcontext.DB(ctx).Take(&result, "owner=? AND spender=?", owner, spender).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return result.Amount, nil
}

func (r *ledgerRepository) SetAllowance(ctx context.Context, owner, spender string, amount uint64) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
		}).
		Create(&entity.TokenAllowance{Owner: owner, Spender: spender, Amount: amount}).Error
}

func (r *ledgerRepository) DecreaseAllowance(ctx context.Context, owner, spender string, amount uint64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.TokenAllowance{}).
		Where("owner=? AND spender=? AND amount>=?", owner, spender, amount).
		Update("amount", gorm.Expr("amount - ?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 && amount > 0 {
		return ErrNotEnough
	}

	return nil
}

func (r *ledgerRepository) CreatePetToken(ctx context.Context, token *entity.PetToken) error {
	return xcontext.DB(ctx).Create(token).Error
}

func (r *ledgerRepository) GetPetToken(ctx context.Context, tokenID string) (*entity.PetToken, error) {
	var result entity.PetToken
	if err := xcontext.DB(ctx).Take(&result, "token_id=?", tokenID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ledgerRepository) GetPetTokensByOwner(ctx context.Context, owner string) ([]entity.PetToken, error) {
	var result []entity.PetToken
	err := xcontext.DB(ctx).
		Where("owner=?", owner).
		Order("created_at ASC, token_id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ledgerRepository) DeletePetToken(ctx context.Context, tokenID string) error {
	tx := xcontext.DB(ctx).Delete(&entity.PetToken{}, "token_id=?", tokenID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
