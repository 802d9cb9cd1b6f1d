package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/petquest/internal/domain/outcome"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/enum"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm"
)

func normalizeAddress(address string) (string, error) {
	normalized, ok := ethutil.NormalizeAddress(address)
	if !ok {
		return "", errorx.New(errorx.BadRequest, "Invalid address %s", address)
	}

	return normalized, nil
}

// loadGameConfig returns the game configuration or InvalidState if the game has
// not been instantiated yet.
func loadGameConfig(ctx context.Context, gameConfigRepo repository.GameConfigRepository) (*entity.GameConfig, error) {
	cfg, err := gameConfigRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Game is not instantiated")
		}

		xcontext.Logger(ctx).Errorf("Cannot get game config: %v", err)
		return nil, errorx.Unknown
	}

	return cfg, nil
}

func messageSeed(ctx context.Context, sender, entropy, purpose string) uint64 {
	return outcome.Seed(outcome.SeedInput{
		Sender:       sender,
		BlockTime:    xcontext.BlockTime(ctx),
		MessageIndex: xcontext.MessageIndex(ctx),
		Entropy:      entropy,
		Purpose:      purpose,
	})
}

func getPet(ctx context.Context, petRepo repository.PetRepository, petID string) (*entity.Pet, error) {
	pet, err := petRepo.GetByID(ctx, petID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found pet %s", petID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get pet %s: %v", petID, err)
		return nil, errorx.Unknown
	}

	return pet, nil
}

func parseQuestType(questType string) (entity.QuestType, error) {
	t, err := enum.ToEnum[entity.QuestType](questType)
	if err != nil {
		return "", errorx.New(errorx.NotFound, "Not found quest type %s", questType)
	}

	return t, nil
}
