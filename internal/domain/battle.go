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
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm"
)

type BattleDomain interface {
	Challenge(context.Context, *model.BattlePetRequest) (*model.BattlePetResponse, error)
	Accept(context.Context, *model.AcceptBattleRequest) (*model.AcceptBattleResponse, error)
	Decline(context.Context, *model.DeclineBattleRequest) (*model.DeclineBattleResponse, error)
	Cancel(context.Context, *model.CancelBattleRequest) (*model.CancelBattleResponse, error)
	Claim(context.Context, *model.ClaimBattleRequest) (*model.ClaimBattleResponse, error)

	// VoidUnfunded ends a battle whose wager pull from side failed on chain.
	VoidUnfunded(ctx context.Context, battleID string, side entity.BattleSide) error
}

type battleDomain struct {
	gameConfigRepo repository.GameConfigRepository
	petRepo        repository.PetRepository
	battleRepo     repository.BattleRepository
	token          ledger.FungibleToken
	gate           AuthorizationGate
	policy         outcome.BattlePolicy
}

func NewBattleDomain(
	gameConfigRepo repository.GameConfigRepository,
	petRepo repository.PetRepository,
	battleRepo repository.BattleRepository,
	token ledger.FungibleToken,
	gate AuthorizationGate,
	policy outcome.BattlePolicy,
) *battleDomain {
	return &battleDomain{
		gameConfigRepo: gameConfigRepo,
		petRepo:        petRepo,
		battleRepo:     battleRepo,
		token:          token,
		gate:           gate,
		policy:         policy,
	}
}

func (d *battleDomain) Challenge(
	ctx context.Context, req *model.BattlePetRequest,
) (*model.BattlePetResponse, error) {
	if req.Wager == 0 {
		return nil, errorx.New(errorx.BadRequest, "Wager must be positive")
	}

	if req.PetID == req.OtherPetID {
		return nil, errorx.New(errorx.BadRequest, "A pet cannot battle itself")
	}

	pet, initiator, err := d.gate.AuthorizePet(ctx, req.PetID)
	if err != nil {
		return nil, err
	}

	otherPet, err := getPet(ctx, d.petRepo, req.OtherPetID)
	if err != nil {
		return nil, err
	}

	if !pet.Lock.IsFree() {
		return nil, errorx.New(errorx.InvalidState, "Pet %s is busy", pet.ID)
	}

	if !otherPet.Lock.IsFree() {
		return nil, errorx.New(errorx.InvalidState, "Pet %s is busy", otherPet.ID)
	}

	if _, err := loadGameConfig(ctx, d.gameConfigRepo); err != nil {
		return nil, err
	}

	counter, err := d.gameConfigRepo.IncreaseBattleCounter(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increase battle counter: %v", err)
		return nil, errorx.Unknown
	}

	battle := &entity.Battle{
		Base:       entity.Base{ID: entity.BattleID(counter)},
		PetID:      pet.ID,
		OtherPetID: otherPet.ID,
		Initiator:  initiator,
		Wager:      req.Wager,
		Status:     entity.BattleStatusPending,
	}
	if err := d.battleRepo.Create(ctx, battle); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create battle: %v", err)
		return nil, errorx.Unknown
	}

	lock := entity.PetLock{
		Kind:     entity.PetLockOnBattle,
		BattleID: sql.NullString{String: battle.ID, Valid: true},
	}
	for _, id := range []string{pet.ID, otherPet.ID} {
		if err := d.petRepo.UpdateLock(ctx, id, lock); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot lock pet %s: %v", id, err)
			return nil, errorx.Unknown
		}
	}

	pullCtx := xcontext.WithLedgerReference(ctx, entity.BattleWagerReference(battle.ID, entity.BattleSideChallenger))
	if err := d.token.Pull(pullCtx, initiator, req.Wager); err != nil {
		return nil, err
	}

	return &model.BattlePetResponse{BattleID: battle.ID}, nil
}

func (d *battleDomain) Accept(
	ctx context.Context, req *model.AcceptBattleRequest,
) (*model.AcceptBattleResponse, error) {
	battle, err := d.getBattle(ctx, req.BattleID)
	if err != nil {
		return nil, err
	}

	otherPet, opponent, err := d.gate.AuthorizePet(ctx, battle.OtherPetID)
	if err != nil {
		return nil, err
	}

	if battle.Status != entity.BattleStatusPending {
		return nil, errorx.New(errorx.InvalidState, "Battle %s is already accepted", battle.ID)
	}

	pet, err := getPet(ctx, d.petRepo, battle.PetID)
	if err != nil {
		return nil, err
	}

	cfg, err := loadGameConfig(ctx, d.gameConfigRepo)
	if err != nil {
		return nil, err
	}

	battle.Outcome = d.policy.ChallengerWins(outcome.BattleInput{
		Seed:       messageSeed(ctx, opponent, cfg.Entropy, "battle:"+battle.ID),
		Challenger: pet.Current,
		Defender:   otherPet.Current,
	})
	battle.Status = entity.BattleStatusAccepted
	battle.Opponent = sql.NullString{String: opponent, Valid: true}
	if err := d.battleRepo.Update(ctx, battle); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update battle: %v", err)
		return nil, errorx.Unknown
	}

	pullCtx := xcontext.WithLedgerReference(ctx, entity.BattleWagerReference(battle.ID, entity.BattleSideDefender))
	if err := d.token.Pull(pullCtx, opponent, battle.Wager); err != nil {
		return nil, err
	}

	return &model.AcceptBattleResponse{WinnerPetID: battle.WinnerPetID()}, nil
}

func (d *battleDomain) Decline(
	ctx context.Context, req *model.DeclineBattleRequest,
) (*model.DeclineBattleResponse, error) {
	battle, err := d.getBattle(ctx, req.BattleID)
	if err != nil {
		return nil, err
	}

	if _, _, err := d.gate.AuthorizePet(ctx, battle.OtherPetID); err != nil {
		return nil, err
	}

	if err := d.abort(ctx, battle); err != nil {
		return nil, err
	}

	return &model.DeclineBattleResponse{}, nil
}

func (d *battleDomain) Cancel(
	ctx context.Context, req *model.CancelBattleRequest,
) (*model.CancelBattleResponse, error) {
	battle, err := d.getBattle(ctx, req.BattleID)
	if err != nil {
		return nil, err
	}

	if _, _, err := d.gate.AuthorizePet(ctx, battle.PetID); err != nil {
		return nil, err
	}

	if err := d.abort(ctx, battle); err != nil {
		return nil, err
	}

	return &model.CancelBattleResponse{}, nil
}

func (d *battleDomain) Claim(
	ctx context.Context, req *model.ClaimBattleRequest,
) (*model.ClaimBattleResponse, error) {
	battle, err := d.getBattle(ctx, req.BattleID)
	if err != nil {
		return nil, err
	}

	if req.PetID != battle.PetID && req.PetID != battle.OtherPetID {
		return nil, errorx.New(errorx.BadRequest, "Pet %s is not in battle %s", req.PetID, battle.ID)
	}

	_, claimer, err := d.gate.AuthorizePet(ctx, req.PetID)
	if err != nil {
		return nil, err
	}

	if battle.Status != entity.BattleStatusAccepted {
		return nil, errorx.New(errorx.InvalidState, "Battle %s is not accepted yet", battle.ID)
	}

	if battle.Claimed(req.PetID) {
		return nil, errorx.New(errorx.AlreadyClaimed, "Pet %s already claimed battle %s", req.PetID, battle.ID)
	}

	battle.SetClaimed(req.PetID)
	won := battle.WinnerPetID() == req.PetID

	unlocks := []string{req.PetID}
	if won {
		unlocks = []string{battle.PetID, battle.OtherPetID}
	}

	for _, id := range unlocks {
		if err := d.petRepo.UnlockBattle(ctx, id, battle.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot unlock pet %s: %v", id, err)
			return nil, errorx.Unknown
		}
	}

	if battle.PetClaimed && battle.OtherPetClaimed {
		err = d.battleRepo.Delete(ctx, battle.ID)
	} else {
		err = d.battleRepo.Update(ctx, battle)
	}
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save claimed battle: %v", err)
		return nil, errorx.Unknown
	}

	var amount uint64
	if won {
		amount = 2 * battle.Wager
		if err := d.token.Pay(ctx, claimer, amount); err != nil {
			return nil, err
		}
	}

	return &model.ClaimBattleResponse{Won: won, Amount: amount}, nil
}

// abort ends a pending battle, frees both pets and refunds the initiator.
func (d *battleDomain) abort(ctx context.Context, battle *entity.Battle) error {
	if battle.Status != entity.BattleStatusPending {
		return errorx.New(errorx.InvalidState, "Battle %s is already accepted", battle.ID)
	}

	for _, id := range []string{battle.PetID, battle.OtherPetID} {
		if err := d.petRepo.UnlockBattle(ctx, id, battle.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot unlock pet %s: %v", id, err)
			return errorx.Unknown
		}
	}

	if err := d.battleRepo.Delete(ctx, battle.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete battle: %v", err)
		return errorx.Unknown
	}

	return d.token.Pay(ctx, battle.Initiator, battle.Wager)
}

// VoidUnfunded frees both pets, deletes the battle and refunds the wager of the
// other side if it was paid. A battle with a claimed side is left untouched
// since its payout is already recorded.
func (d *battleDomain) VoidUnfunded(ctx context.Context, battleID string, side entity.BattleSide) error {
	battle, err := d.getBattle(ctx, battleID)
	if err != nil {
		return err
	}

	if battle.PetClaimed || battle.OtherPetClaimed {
		return errorx.New(errorx.InvalidState, "Battle %s is already claimed", battle.ID)
	}

	if side == entity.BattleSideDefender && battle.Status != entity.BattleStatusAccepted {
		return errorx.New(errorx.InvalidState, "Battle %s has no defender wager", battle.ID)
	}

	for _, id := range []string{battle.PetID, battle.OtherPetID} {
		if err := d.petRepo.UnlockBattle(ctx, id, battle.ID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot unlock pet %s: %v", id, err)
			return errorx.Unknown
		}
	}

	if err := d.battleRepo.Delete(ctx, battle.ID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete battle: %v", err)
		return errorx.Unknown
	}

	switch {
	case side == entity.BattleSideDefender:
		return d.token.Pay(ctx, battle.Initiator, battle.Wager)
	case battle.Status == entity.BattleStatusAccepted:
		return d.token.Pay(ctx, battle.Opponent.String, battle.Wager)
	}

	return nil
}

func (d *battleDomain) getBattle(ctx context.Context, id string) (*entity.Battle, error) {
	battle, err := d.battleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found battle %s", id)
		}

		xcontext.Logger(ctx).Errorf("Cannot get battle %s: %v", id, err)
		return nil, errorx.Unknown
	}

	return battle, nil
}
