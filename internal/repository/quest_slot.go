package repository

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type QuestSlotRepository interface {
	CreateIfNotExists(context.Context, []entity.QuestSlot) error
	Get(ctx context.Context, owner string, questType entity.QuestType) (*entity.QuestSlot, error)
	GetByOwner(ctx context.Context, owner string) ([]entity.QuestSlot, error)
	Save(context.Context, *entity.QuestSlot) error
}

type questSlotRepository struct{}

func NewQuestSlotRepository() *questSlotRepository {
	return &questSlotRepository{}
}

func (r *questSlotRepository) CreateIfNotExists(ctx context.Context, slots []entity.QuestSlot) error {
	if len(slots) == 0 {
		return nil
	}

	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&slots).Error
}

func (r *questSlotRepository) Get(
	ctx context.Context, owner string, questType entity.QuestType,
) (*entity.QuestSlot, error) {
	var result entity.QuestSlot
	err := xcontext.DB(ctx).Take(&result, "owner=? AND quest_type=?", owner, questType).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *questSlotRepository) GetByOwner(ctx context.Context, owner string) ([]entity.QuestSlot, error) {
	var result []entity.QuestSlot
	if err := xcontext.DB(ctx).Order("quest_type").Find(&result, "owner=?", owner).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questSlotRepository) Save(ctx context.Context, slot *entity.QuestSlot) error {
	return xcontext.DB(ctx).Save(slot).Error
}
