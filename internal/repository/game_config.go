package repository

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameConfigRepository interface {
	Create(context.Context, *entity.GameConfig) error
	Get(context.Context) (*entity.GameConfig, error)
	UpdateAdmin(ctx context.Context, admin string) error
	IncreasePetCounter(context.Context) (uint64, error)
	IncreaseBattleCounter(context.Context) (uint64, error)
	IncreaseMessageCounter(context.Context) (uint64, error)

	AddMinters(ctx context.Context, addresses []string) error
	IsMinter(ctx context.Context, address string) (bool, error)
	GetMinters(context.Context) ([]entity.Minter, error)
}

type gameConfigRepository struct{}

func NewGameConfigRepository() *gameConfigRepository {
	return &gameConfigRepository{}
}

func (r *gameConfigRepository) Create(ctx context.Context, cfg *entity.GameConfig) error {
	cfg.ID = entity.GameConfigID
	return xcontext.DB(ctx).Create(cfg).Error
}

func (r *gameConfigRepository) Get(ctx context.Context) (*entity.GameConfig, error) {
	var result entity.GameConfig
	if err := xcontext.DB(ctx).Take(&result, "id=?", entity.GameConfigID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *gameConfigRepository) UpdateAdmin(ctx context.Context, admin string) error {
	return xcontext.DB(ctx).
		Model(&entity.GameConfig{}).
		Where("id=?", entity.GameConfigID).
		Update("admin", admin).Error
}

// increaseCounter returns the value of the counter before the increment.
func (r *gameConfigRepository) increaseCounter(ctx context.Context, column string) (uint64, error) {
	var cfg entity.GameConfig
	if err := xcontext.DB(ctx).Select(column).Take(&cfg, "id=?", entity.GameConfigID).Error; err != nil {
		return 0, err
	}

	tx := xcontext.DB(ctx).
		Model(&entity.GameConfig{}).
		Where("id=?", entity.GameConfigID).
		Update(column, gorm.Expr(column+" + 1"))
	if tx.Error != nil {
		return 0, tx.Error
	}

	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	switch column {
	case "pet_counter":
		return cfg.PetCounter, nil
	case "battle_counter":
		return cfg.BattleCounter, nil
	default:
		return cfg.MessageCounter, nil
	}
}

func (r *gameConfigRepository) IncreasePetCounter(ctx context.Context) (uint64, error) {
	return r.increaseCounter(ctx, "pet_counter")
}

func (r *gameConfigRepository) IncreaseBattleCounter(ctx context.Context) (uint64, error) {
	return r.increaseCounter(ctx, "battle_counter")
}

func (r *gameConfigRepository) IncreaseMessageCounter(ctx context.Context) (uint64, error) {
	return r.increaseCounter(ctx, "message_counter")
}

func (r *gameConfigRepository) AddMinters(ctx context.Context, addresses []string) error {
	if len(addresses) == 0 {
		return nil
	}

	minters := make([]entity.Minter, 0, len(addresses))
	for _, addr := range addresses {
		minters = append(minters, entity.Minter{Address: addr})
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&minters).Error
}

func (r *gameConfigRepository) IsMinter(ctx context.Context, address string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Minter{}).Where("address=?", address).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *gameConfigRepository) GetMinters(ctx context.Context) ([]entity.Minter, error) {
	var result []entity.Minter
	if err := xcontext.DB(ctx).Order("address").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
