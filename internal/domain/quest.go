package domain

import (
	"context"
	"database/sql"
	"errors"

	"github.com/questx-lab/petquest/internal/domain/outcome"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/ledger"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/enum"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm"
)

type QuestDomain interface {
	Send(context.Context, *model.SendPetOnQuestRequest) (*model.SendPetOnQuestResponse, error)
	Claim(context.Context, *model.ClaimQuestRewardsRequest) (*model.ClaimQuestRewardsResponse, error)
}

type questDomain struct {
	gameConfigRepo repository.GameConfigRepository
	petRepo        repository.PetRepository
	questSlotRepo  repository.QuestSlotRepository
	historyLog     HistoryLog
	token          ledger.FungibleToken
	gate           AuthorizationGate
	policy         outcome.QuestPolicy
}

func NewQuestDomain(
	gameConfigRepo repository.GameConfigRepository,
	petRepo repository.PetRepository,
	questSlotRepo repository.QuestSlotRepository,
	historyLog HistoryLog,
	token ledger.FungibleToken,
	gate AuthorizationGate,
	policy outcome.QuestPolicy,
) *questDomain {
	return &questDomain{
		gameConfigRepo: gameConfigRepo,
		petRepo:        petRepo,
		questSlotRepo:  questSlotRepo,
		historyLog:     historyLog,
		token:          token,
		gate:           gate,
		policy:         policy,
	}
}

func (d *questDomain) Send(
	ctx context.Context, req *model.SendPetOnQuestRequest,
) (*model.SendPetOnQuestResponse, error) {
	questType, err := parseQuestType(req.QuestType)
	if err != nil {
		return nil, err
	}

	pet, owner, err := d.gate.AuthorizePet(ctx, req.PetID)
	if err != nil {
		return nil, err
	}

	if !pet.Lock.IsFree() {
		return nil, errorx.New(errorx.InvalidState, "Pet %s is busy", pet.ID)
	}

	cfg, err := loadGameConfig(ctx, d.gameConfigRepo)
	if err != nil {
		return nil, err
	}

	slot, err := d.questSlotRepo.Get(ctx, owner, questType)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get quest slot: %v", err)
			return nil, errorx.Unknown
		}

		if err := ensureQuestSlots(ctx, d.questSlotRepo, owner, cfg.Entropy); err != nil {
			return nil, err
		}

		slot, err = d.questSlotRepo.Get(ctx, owner, questType)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get quest slot after creating it: %v", err)
			return nil, errorx.Unknown
		}
	}

	now := xcontext.BlockTime(ctx)
	if status := slot.Status(now); status != entity.QuestStatusAvailable {
		return nil, errorx.New(errorx.InvalidState, "Quest %s is %s", questType, status)
	}

	result := d.policy.Quest(outcome.QuestInput{
		Seed:       messageSeed(ctx, owner, cfg.Entropy, "quest:"+string(questType)),
		Stat:       pet.Current.Get(questType.Stat()),
		Luck:       pet.Current.Luck,
		Difficulty: slot.Difficulty,
		TimesWon:   slot.DifficultyIncrement,
	})

	exploreEnd := now.Add(xcontext.Configs(ctx).Game.QuestExploreTime)
	slot.PetID = sql.NullString{String: pet.ID, Valid: true}
	slot.Outcome = result
	slot.Loot = questLoot(slot)
	slot.StartedAt = sql.NullTime{Time: now, Valid: true}
	slot.FinishedExploring = sql.NullTime{Time: exploreEnd, Valid: true}
	if err := d.questSlotRepo.Save(ctx, slot); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save quest slot: %v", err)
		return nil, errorx.Unknown
	}

	err = d.petRepo.UpdateLock(ctx, pet.ID, entity.PetLock{
		Kind:      entity.PetLockOnQuest,
		QuestType: sql.NullString{String: string(questType), Valid: true},
		StartedAt: sql.NullTime{Time: now, Valid: true},
		EndsAt:    sql.NullTime{Time: exploreEnd, Valid: true},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot lock pet: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SendPetOnQuestResponse{Quest: model.ConvertQuest(slot, now)}, nil
}

func (d *questDomain) Claim(
	ctx context.Context, req *model.ClaimQuestRewardsRequest,
) (*model.ClaimQuestRewardsResponse, error) {
	questType, err := parseQuestType(req.QuestType)
	if err != nil {
		return nil, err
	}

	owner, err := d.gate.Sender(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := loadGameConfig(ctx, d.gameConfigRepo)
	if err != nil {
		return nil, err
	}

	slot, err := d.questSlotRepo.Get(ctx, owner, questType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidState, "Quest %s is not claimable", questType)
		}

		xcontext.Logger(ctx).Errorf("Cannot get quest slot: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.BlockTime(ctx)
	if status := slot.Status(now); status != entity.QuestStatusClaimable {
		return nil, errorx.New(errorx.InvalidState, "Quest %s is %s", questType, status)
	}

	petID := slot.PetID.String
	result := slot.Outcome
	loot := slot.Loot.For(result)

	if err := d.petRepo.UnlockQuest(ctx, petID, questType); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unlock pet: %v", err)
		return nil, errorx.Unknown
	}

	err = d.historyLog.Append(ctx, &entity.QuestHistory{
		Owner:         owner,
		PetID:         petID,
		QuestType:     questType,
		TimeStarted:   slot.StartedAt.Time,
		TimeEnded:     now,
		LootCollected: loot,
		Outcome:       result,
	})
	if err != nil {
		return nil, err
	}

	seed := messageSeed(ctx, owner, cfg.Entropy, "claim:"+string(questType))
	slot.BaseLoot = outcome.Roll(seed, "base_loot", 1, 5)
	slot.Difficulty = outcome.Roll(seed, "difficulty", 1, 3)
	switch result {
	case entity.QuestOutcomePass:
		slot.TimesWon++
		slot.DifficultyIncrement += outcome.Roll(seed, "increment", 0, 1)
	case entity.QuestOutcomeExceptionalPass:
		slot.TimesWon++
		slot.DifficultyIncrement += outcome.Roll(seed, "increment", 1, 2)
	}

	slot.PetID = sql.NullString{}
	slot.Outcome = ""
	slot.Loot = entity.QuestLoot{}
	slot.StartedAt = sql.NullTime{}
	slot.FinishedExploring = sql.NullTime{}
	slot.FinishedCooldown = sql.NullTime{Time: now.Add(xcontext.Configs(ctx).Game.QuestCooldown), Valid: true}
	if err := d.questSlotRepo.Save(ctx, slot); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save quest slot: %v", err)
		return nil, errorx.Unknown
	}

	if loot > 0 {
		if err := d.token.Mint(ctx, owner, loot); err != nil {
			return nil, err
		}
	}

	return &model.ClaimQuestRewardsResponse{
		PetID:   petID,
		Outcome: string(result),
		Loot:    loot,
	}, nil
}

// questLoot is the reward table of the slot for its current catalog row.
func questLoot(slot *entity.QuestSlot) entity.QuestLoot {
	base := uint64(slot.BaseLoot + slot.Difficulty + slot.DifficultyIncrement)
	return entity.QuestLoot{
		Fail:            (base + 2) / 3,
		Pass:            base,
		ExceptionalPass: 2 * base,
	}
}

// ensureQuestSlots creates the missing quest slots of owner. Existing slots are
// left untouched.
func ensureQuestSlots(
	ctx context.Context, questSlotRepo repository.QuestSlotRepository, owner, entropy string,
) error {
	slots := []entity.QuestSlot{}
	for _, questType := range enum.Values[entity.QuestType]() {
		seed := messageSeed(ctx, owner, entropy, "slot:"+string(questType))
		slots = append(slots, entity.QuestSlot{
			Owner:      owner,
			QuestType:  questType,
			BaseLoot:   outcome.Roll(seed, "base_loot", 1, 5),
			Difficulty: outcome.Roll(seed, "difficulty", 1, 3),
		})
	}

	if err := questSlotRepo.CreateIfNotExists(ctx, slots); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create quest slots of %s: %v", owner, err)
		return errorx.Unknown
	}

	return nil
}
