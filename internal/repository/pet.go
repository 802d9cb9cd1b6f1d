package repository

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

type PetRepository interface {
	Create(context.Context, *entity.Pet) error
	GetByID(context.Context, string) (*entity.Pet, error)
	GetByIDs(context.Context, []string) ([]entity.Pet, error)
	GetAllIDs(context.Context) ([]string, error)
	UpdateStats(context.Context, *entity.Pet) error
	UpdateLock(ctx context.Context, id string, lock entity.PetLock) error
	UnlockQuest(ctx context.Context, id string, questType entity.QuestType) error
	UnlockBattle(ctx context.Context, id, battleID string) error
	Delete(context.Context, string) error
}

type petRepository struct{}

func NewPetRepository() *petRepository {
	return &petRepository{}
}

func (r *petRepository) Create(ctx context.Context, pet *entity.Pet) error {
	if pet.Lock.Kind == "" {
		pet.Lock.Kind = entity.PetLockFree
	}

	return xcontext.DB(ctx).Create(pet).Error
}

func (r *petRepository) GetByID(ctx context.Context, id string) (*entity.Pet, error) {
	var result entity.Pet
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *petRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Pet, error) {
	var result []entity.Pet
	err := xcontext.DB(ctx).
		Where("id IN (?)", ids).
		Order("serial ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *petRepository) GetAllIDs(ctx context.Context) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.Pet{}).
		Order("serial ASC").
		Pluck("id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *petRepository) UpdateStats(ctx context.Context, pet *entity.Pet) error {
	columns := map[string]any{}
	for prefix, stats := range map[string]entity.Stats{
		"current_":      pet.Current,
		"max_":          pet.Max,
		"upgrade_cost_": pet.UpgradeCosts,
	} {
		columns[prefix+"health"] = stats.Health
		columns[prefix+"strength"] = stats.Strength
		columns[prefix+"stamina"] = stats.Stamina
		columns[prefix+"intelligence"] = stats.Intelligence
		columns[prefix+"luck"] = stats.Luck
	}

	return xcontext.DB(ctx).
		Model(&entity.Pet{}).
		Where("id=?", pet.ID).
		Updates(columns).Error
}

func lockColumns(lock entity.PetLock) map[string]any {
	return map[string]any{
		"lock_kind":       lock.Kind,
		"lock_quest_type": lock.QuestType,
		"lock_started_at": lock.StartedAt,
		"lock_ends_at":    lock.EndsAt,
		"lock_battle_id":  lock.BattleID,
	}
}

func (r *petRepository) UpdateLock(ctx context.Context, id string, lock entity.PetLock) error {
	return xcontext.DB(ctx).
		Model(&entity.Pet{}).
		Where("id=?", id).
		Updates(lockColumns(lock)).Error
}

// UnlockQuest frees the pet only if it is still held by the given quest.
func (r *petRepository) UnlockQuest(ctx context.Context, id string, questType entity.QuestType) error {
	return xcontext.DB(ctx).
		Model(&entity.Pet{}).
		Where("id=? AND lock_kind=? AND lock_quest_type=?", id, entity.PetLockOnQuest, questType).
		Updates(lockColumns(entity.PetLock{Kind: entity.PetLockFree})).Error
}

// UnlockBattle frees the pet only if it is still held by the given battle.
func (r *petRepository) UnlockBattle(ctx context.Context, id, battleID string) error {
	return xcontext.DB(ctx).
		Model(&entity.Pet{}).
		Where("id=? AND lock_kind=? AND lock_battle_id=?", id, entity.PetLockOnBattle, battleID).
		Updates(lockColumns(entity.PetLock{Kind: entity.PetLockFree})).Error
}

func (r *petRepository) Delete(ctx context.Context, id string) error {
	return xcontext.DB(ctx).Delete(&entity.Pet{}, "id=?", id).Error
}
