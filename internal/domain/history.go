package domain

import (
	"context"

	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

// HistoryLog keeps the finished quests of every owner in the order they were
// claimed. Entries are never changed after they are appended.
type HistoryLog interface {
	Append(ctx context.Context, entry *entity.QuestHistory) error
	List(ctx context.Context, owner string, offset, limit int) ([]entity.QuestHistory, int64, error)
}

type historyLog struct {
	questHistoryRepo repository.QuestHistoryRepository
}

func NewHistoryLog(questHistoryRepo repository.QuestHistoryRepository) *historyLog {
	return &historyLog{questHistoryRepo: questHistoryRepo}
}

func (l *historyLog) Append(ctx context.Context, entry *entity.QuestHistory) error {
	if err := l.questHistoryRepo.Create(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append quest history of %s: %v", entry.Owner, err)
		return errorx.Unknown
	}

	return nil
}

func (l *historyLog) List(
	ctx context.Context, owner string, offset, limit int,
) ([]entity.QuestHistory, int64, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return nil, 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return nil, 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	if offset < 0 {
		return nil, 0, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	history, err := l.questHistoryRepo.GetByOwner(ctx, owner, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest history of %s: %v", owner, err)
		return nil, 0, errorx.Unknown
	}

	total, err := l.questHistoryRepo.CountByOwner(ctx, owner)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count quest history of %s: %v", owner, err)
		return nil, 0, errorx.Unknown
	}

	return history, total, nil
}
