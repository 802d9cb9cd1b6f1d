package repository

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

type QuestHistoryRepository interface {
	Create(context.Context, *entity.QuestHistory) error
	GetByOwner(ctx context.Context, owner string, offset, limit int) ([]entity.QuestHistory, error)
	CountByOwner(ctx context.Context, owner string) (int64, error)
}

type questHistoryRepository struct{}

func NewQuestHistoryRepository() *questHistoryRepository {
	return &questHistoryRepository{}
}

func (r *questHistoryRepository) Create(ctx context.Context, history *entity.QuestHistory) error {
	return xcontext.DB(ctx).Create(history).Error
}

func (r *questHistoryRepository) GetByOwner(
	ctx context.Context, owner string, offset, limit int,
) ([]entity.QuestHistory, error) {
	var result []entity.QuestHistory
	err := xcontext.DB(ctx).
		Where("owner=?", owner).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *questHistoryRepository) CountByOwner(ctx context.Context, owner string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.QuestHistory{}).Where("owner=?", owner).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
