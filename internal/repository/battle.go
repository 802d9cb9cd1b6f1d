package repository

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

type BattleRepository interface {
	Create(context.Context, *entity.Battle) error
	GetByID(context.Context, string) (*entity.Battle, error)
	GetByPetIDs(context.Context, []string) ([]entity.Battle, error)
	GetAll(context.Context) ([]entity.Battle, error)
	Update(context.Context, *entity.Battle) error
	Delete(context.Context, string) error
}

type battleRepository struct{}

func NewBattleRepository() *battleRepository {
	return &battleRepository{}
}

func (r *battleRepository) Create(ctx context.Context, battle *entity.Battle) error {
	return xcontext.DB(ctx).Create(battle).Error
}

func (r *battleRepository) GetByID(ctx context.Context, id string) (*entity.Battle, error) {
	var result entity.Battle
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *battleRepository) GetByPetIDs(ctx context.Context, petIDs []string) ([]entity.Battle, error) {
	var result []entity.Battle
	err := xcontext.DB(ctx).
		Where("pet_id IN (?) OR other_pet_id IN (?)", petIDs, petIDs).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *battleRepository) GetAll(ctx context.Context) ([]entity.Battle, error) {
	var result []entity.Battle
	if err := xcontext.DB(ctx).Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *battleRepository) Update(ctx context.Context, battle *entity.Battle) error {
	return xcontext.DB(ctx).
		Model(&entity.Battle{}).
		Where("id=?", battle.ID).
		Updates(map[string]any{
			"opponent":          battle.Opponent,
			"status":            battle.Status,
			"outcome":           battle.Outcome,
			"pet_claimed":       battle.PetClaimed,
			"other_pet_claimed": battle.OtherPetClaimed,
		}).Error
}

func (r *battleRepository) Delete(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Battle{}, "id=?", id).Error
}
