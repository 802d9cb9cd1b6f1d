package domain

import (
	"context"
	"time"

	"github.com/questx-lab/petquest/internal/ledger"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/xcontext"
)

// QueryDomain serves the private reads. Every method except AllPets requires a
// permit of the owner.
type QueryDomain interface {
	MyPets(context.Context, *model.MyPetsRequest) (*model.MyPetsResponse, error)
	MyQuests(context.Context, *model.MyQuestsRequest) (*model.MyQuestsResponse, error)
	MyQuestHistory(context.Context, *model.MyQuestHistoryRequest) (*model.MyQuestHistoryResponse, error)
	MyBalance(context.Context, *model.MyBalanceRequest) (*model.MyBalanceResponse, error)
	MyBattles(context.Context, *model.MyBattlesRequest) (*model.MyBattlesResponse, error)
	AllPets(context.Context, *model.AllPetsRequest) (*model.AllPetsResponse, error)
}

type queryDomain struct {
	petRepo       repository.PetRepository
	questSlotRepo repository.QuestSlotRepository
	battleRepo    repository.BattleRepository
	historyLog    HistoryLog
	bridge        ledger.Bridge
	gate          AuthorizationGate
}

func NewQueryDomain(
	petRepo repository.PetRepository,
	questSlotRepo repository.QuestSlotRepository,
	battleRepo repository.BattleRepository,
	historyLog HistoryLog,
	bridge ledger.Bridge,
	gate AuthorizationGate,
) *queryDomain {
	return &queryDomain{
		petRepo:       petRepo,
		questSlotRepo: questSlotRepo,
		battleRepo:    battleRepo,
		historyLog:    historyLog,
		bridge:        bridge,
		gate:          gate,
	}
}

func (d *queryDomain) MyPets(ctx context.Context, req *model.MyPetsRequest) (*model.MyPetsResponse, error) {
	owner, err := d.verifyOwner(ctx, req.Permits, PermitScopeOwner, req.Owner)
	if err != nil {
		return nil, err
	}

	petIDs, err := d.bridge.TokensOf(ctx, owner)
	if err != nil {
		return nil, err
	}

	pets := []model.Pet{}
	if len(petIDs) > 0 {
		entities, err := d.petRepo.GetByIDs(ctx, petIDs)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get pets: %v", err)
			return nil, errorx.Unknown
		}

		for i := range entities {
			pets = append(pets, model.ConvertPet(&entities[i], owner))
		}
	}

	return &model.MyPetsResponse{Pets: pets}, nil
}

func (d *queryDomain) MyQuests(ctx context.Context, req *model.MyQuestsRequest) (*model.MyQuestsResponse, error) {
	owner, err := d.gate.VerifyPermits(ctx, req.Permits, PermitScopeOwner)
	if err != nil {
		return nil, err
	}

	slots, err := d.questSlotRepo.GetByOwner(ctx, owner)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get quest slots: %v", err)
		return nil, errorx.Unknown
	}

	now := queryTime(ctx)
	quests := []model.Quest{}
	for i := range slots {
		quests = append(quests, model.ConvertQuest(&slots[i], now))
	}

	return &model.MyQuestsResponse{Quests: quests}, nil
}

func (d *queryDomain) MyQuestHistory(
	ctx context.Context, req *model.MyQuestHistoryRequest,
) (*model.MyQuestHistoryResponse, error) {
	owner, err := d.gate.VerifyPermits(ctx, req.Permits, PermitScopeHistory)
	if err != nil {
		return nil, err
	}

	entries, total, err := d.historyLog.List(ctx, owner, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	history := []model.QuestHistoryEntry{}
	for i := range entries {
		history = append(history, model.ConvertQuestHistory(&entries[i]))
	}

	return &model.MyQuestHistoryResponse{History: history, Total: total}, nil
}

func (d *queryDomain) MyBalance(
	ctx context.Context, req *model.MyBalanceRequest,
) (*model.MyBalanceResponse, error) {
	owner, err := d.verifyOwner(ctx, req.Permits, PermitScopeBalance, req.Owner)
	if err != nil {
		return nil, err
	}

	balance, err := d.bridge.BalanceOf(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &model.MyBalanceResponse{Balance: balance}, nil
}

func (d *queryDomain) MyBattles(
	ctx context.Context, req *model.MyBattlesRequest,
) (*model.MyBattlesResponse, error) {
	owner, err := d.gate.VerifyPermits(ctx, req.Permits, PermitScopeOwner)
	if err != nil {
		return nil, err
	}

	petIDs, err := d.bridge.TokensOf(ctx, owner)
	if err != nil {
		return nil, err
	}

	battles := []model.Battle{}
	if len(petIDs) > 0 {
		entities, err := d.battleRepo.GetByPetIDs(ctx, petIDs)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get battles: %v", err)
			return nil, errorx.Unknown
		}

		for i := range entities {
			battles = append(battles, model.ConvertBattle(&entities[i]))
		}
	}

	return &model.MyBattlesResponse{Battles: battles}, nil
}

func (d *queryDomain) AllPets(ctx context.Context, req *model.AllPetsRequest) (*model.AllPetsResponse, error) {
	ids, err := d.petRepo.GetAllIDs(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all pets: %v", err)
		return nil, errorx.Unknown
	}

	if ids == nil {
		ids = []string{}
	}

	return &model.AllPetsResponse{PetIDs: ids}, nil
}

// verifyOwner returns the permit subject, which must be the queried owner when
// one is given.
func (d *queryDomain) verifyOwner(
	ctx context.Context, permits []model.Permit, scope, owner string,
) (string, error) {
	caller, err := d.gate.VerifyPermits(ctx, permits, scope)
	if err != nil {
		return "", err
	}

	if owner == "" {
		return caller, nil
	}

	owner, err = normalizeAddress(owner)
	if err != nil {
		return "", err
	}

	if owner != caller {
		xcontext.Logger(ctx).Debugf("Permit of %s cannot read data of %s", caller, owner)
		return "", errorx.New(errorx.Unauthorized, "Permit does not belong to %s", owner)
	}

	return owner, nil
}

func queryTime(ctx context.Context) time.Time {
	if now := xcontext.BlockTime(ctx); !now.IsZero() {
		return now
	}

	return time.Now().UTC()
}
