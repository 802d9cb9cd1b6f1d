package domain

import (
	"context"
	"fmt"

	"github.com/questx-lab/petquest/internal/domain/outcome"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/ledger"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/enum"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

const (
	minBaseStat    = 5
	maxBaseStat    = 8
	minMaxStat     = 12
	upgradeCostPer = 5
)

type PetDomain interface {
	Mint(context.Context, *model.MintPetRequest) (*model.MintPetResponse, error)
	Release(context.Context, *model.ReleasePetRequest) (*model.ReleasePetResponse, error)
	Upgrade(context.Context, *model.UpgradePetStatsRequest) (*model.UpgradePetStatsResponse, error)
}

type petDomain struct {
	gameConfigRepo repository.GameConfigRepository
	petRepo        repository.PetRepository
	questSlotRepo  repository.QuestSlotRepository
	battleRepo     repository.BattleRepository
	bridge         ledger.Bridge
	gate           AuthorizationGate
}

func NewPetDomain(
	gameConfigRepo repository.GameConfigRepository,
	petRepo repository.PetRepository,
	questSlotRepo repository.QuestSlotRepository,
	battleRepo repository.BattleRepository,
	bridge ledger.Bridge,
	gate AuthorizationGate,
) *petDomain {
	return &petDomain{
		gameConfigRepo: gameConfigRepo,
		petRepo:        petRepo,
		questSlotRepo:  questSlotRepo,
		battleRepo:     battleRepo,
		bridge:         bridge,
		gate:           gate,
	}
}

func (d *petDomain) Mint(ctx context.Context, req *model.MintPetRequest) (*model.MintPetResponse, error) {
	sender, err := d.gate.Sender(ctx)
	if err != nil {
		return nil, err
	}

	recipient, err := normalizeAddress(req.Recipient)
	if err != nil {
		return nil, err
	}

	amount := req.Amount
	if amount == 0 {
		amount = 1
	}

	maxMint := xcontext.Configs(ctx).Game.MaxMintPerMessage
	if amount < 0 || amount > maxMint {
		return nil, errorx.New(errorx.BadRequest, "Amount must be between 1 and %d", maxMint)
	}

	cfg, err := loadGameConfig(ctx, d.gameConfigRepo)
	if err != nil {
		return nil, err
	}

	if sender != recipient && sender != cfg.Admin {
		isMinter, err := d.gameConfigRepo.IsMinter(ctx, sender)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check minter: %v", err)
			return nil, errorx.Unknown
		}

		if !isMinter {
			xcontext.Logger(ctx).Debugf("Sender %s is not allowed to mint for %s", sender, recipient)
			return nil, errorx.New(errorx.Unauthorized, "Only the recipient, the admin or a minter can mint")
		}
	}

	if err := ensureQuestSlots(ctx, d.questSlotRepo, recipient, cfg.Entropy); err != nil {
		return nil, err
	}

	petIDs := []string{}
	for i := 0; i < amount; i++ {
		counter, err := d.gameConfigRepo.IncreasePetCounter(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot increase pet counter: %v", err)
			return nil, errorx.Unknown
		}

		pet := newPet(counter, messageSeed(ctx, sender, cfg.Entropy, fmt.Sprintf("mint:%d", counter)), cfg.MaxStats)
		if err := d.petRepo.Create(ctx, pet); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create pet: %v", err)
			return nil, errorx.Unknown
		}

		petIDs = append(petIDs, pet.ID)
	}

	for _, id := range petIDs {
		if err := d.bridge.MintNFT(ctx, recipient, id); err != nil {
			return nil, err
		}
	}

	return &model.MintPetResponse{PetIDs: petIDs}, nil
}

func (d *petDomain) Release(
	ctx context.Context, req *model.ReleasePetRequest,
) (*model.ReleasePetResponse, error) {
	pet, _, err := d.gate.AuthorizePet(ctx, req.PetID)
	if err != nil {
		return nil, err
	}

	if !pet.Lock.IsFree() {
		return nil, errorx.New(errorx.InvalidState, "Pet %s is busy", pet.ID)
	}

	// The loser is unlocked by the winner's claim but still has to claim its
	// own side before the battle can be settled.
	battles, err := d.battleRepo.GetByPetIDs(ctx, []string{pet.ID})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get battles of pet %s: %v", pet.ID, err)
		return nil, errorx.Unknown
	}

	for _, battle := range battles {
		if !battle.Claimed(pet.ID) {
			return nil, errorx.New(errorx.InvalidState, "Pet %s must claim battle %s first", pet.ID, battle.ID)
		}
	}

	if err := d.petRepo.Delete(ctx, pet.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete pet: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.bridge.BurnNFT(ctx, pet.ID); err != nil {
		return nil, err
	}

	return &model.ReleasePetResponse{}, nil
}

func (d *petDomain) Upgrade(
	ctx context.Context, req *model.UpgradePetStatsRequest,
) (*model.UpgradePetStatsResponse, error) {
	stat, err := enum.ToEnum[entity.Stat](req.Stat)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid stat %s", req.Stat)
	}

	pet, owner, err := d.gate.AuthorizePet(ctx, req.PetID)
	if err != nil {
		return nil, err
	}

	if !pet.Lock.IsFree() {
		return nil, errorx.New(errorx.InvalidState, "Pet %s is busy", pet.ID)
	}

	current := pet.Current.Get(stat)
	if current >= pet.Max.Get(stat) {
		return nil, errorx.New(errorx.InvalidState, "The %s of %s is already maximal", stat, pet.ID)
	}

	cost := uint64(pet.UpgradeCosts.Get(stat))
	balance, err := d.bridge.BalanceOf(ctx, owner)
	if err != nil {
		return nil, err
	}

	if balance < cost {
		return nil, errorx.New(errorx.InsufficientFunds, "Upgrade costs %d but the balance is %d", cost, balance)
	}

	pet.Current.Set(stat, current+1)
	pet.UpgradeCosts.Set(stat, (current+1)*upgradeCostPer)
	if err := d.petRepo.UpdateStats(ctx, pet); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update stats of pet: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.bridge.Burn(ctx, owner, cost); err != nil {
		return nil, err
	}

	return &model.UpgradePetStatsResponse{Value: current + 1, Cost: cost}, nil
}

func newPet(counter, seed uint64, maxStats int) *entity.Pet {
	pet := &entity.Pet{
		Base:   entity.Base{ID: entity.PetID(counter)},
		Serial: counter,
		Lock:   entity.PetLock{Kind: entity.PetLockFree},
	}

	for _, stat := range enum.Values[entity.Stat]() {
		current := outcome.Roll(seed, "current:"+string(stat), minBaseStat, maxBaseStat)
		pet.Current.Set(stat, current)
		pet.Max.Set(stat, outcome.Roll(seed, "max:"+string(stat), minMaxStat, maxStats))
		pet.UpgradeCosts.Set(stat, current*upgradeCostPer)
	}

	return pet
}
