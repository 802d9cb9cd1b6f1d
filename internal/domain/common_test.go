package domain

import (
	"context"
	"testing"

	"github.com/questx-lab/petquest/internal/domain/outcome"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/ledger"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/internal/repository"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/ethutil"
	"github.com/questx-lab/petquest/pkg/testutil"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type fixedQuestPolicy struct {
	result entity.QuestOutcome
}

func (p fixedQuestPolicy) Quest(outcome.QuestInput) entity.QuestOutcome {
	return p.result
}

type fixedBattlePolicy struct {
	challengerWins bool
}

func (p fixedBattlePolicy) ChallengerWins(outcome.BattleInput) bool {
	return p.challengerWins
}

type testDomains struct {
	gameConfigRepo   repository.GameConfigRepository
	petRepo          repository.PetRepository
	questSlotRepo    repository.QuestSlotRepository
	questHistoryRepo repository.QuestHistoryRepository
	battleRepo       repository.BattleRepository
	permitRepo       repository.PermitRepository

	bridge ledger.Bridge
	gate   AuthorizationGate

	pet    PetDomain
	quest  QuestDomain
	battle BattleDomain
	admin  AdminDomain
	query  QueryDomain
}

func newTestDomains(
	ctx context.Context, questPolicy outcome.QuestPolicy, battlePolicy outcome.BattlePolicy,
) *testDomains {
	d := &testDomains{
		gameConfigRepo:   repository.NewGameConfigRepository(),
		petRepo:          repository.NewPetRepository(),
		questSlotRepo:    repository.NewQuestSlotRepository(),
		questHistoryRepo: repository.NewQuestHistoryRepository(),
		battleRepo:       repository.NewBattleRepository(),
		permitRepo:       repository.NewPermitRepository(),
	}

	d.bridge = ledger.NewLocalLedger(repository.NewLedgerRepository(), testutil.Escrow(ctx))
	d.gate = NewAuthorizationGate(d.petRepo, d.permitRepo, d.bridge)
	historyLog := NewHistoryLog(d.questHistoryRepo)

	d.pet = NewPetDomain(d.gameConfigRepo, d.petRepo, d.questSlotRepo, d.battleRepo, d.bridge, d.gate)
	d.quest = NewQuestDomain(d.gameConfigRepo, d.petRepo, d.questSlotRepo, historyLog, d.bridge, d.gate, questPolicy)
	d.battle = NewBattleDomain(d.gameConfigRepo, d.petRepo, d.battleRepo, d.bridge, d.gate, battlePolicy)
	d.admin = NewAdminDomain(d.gameConfigRepo, d.permitRepo, d.gate)
	d.query = NewQueryDomain(d.petRepo, d.questSlotRepo, d.battleRepo, historyLog, d.bridge, d.gate)

	return d
}

func requireErrorCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errorx.Is(err, code), "unexpected error: %v", err)
}

func requireBalance(t *testing.T, ctx context.Context, d *testDomains, address string, want uint64) {
	t.Helper()
	balance, err := d.bridge.BalanceOf(ctx, address)
	require.NoError(t, err)
	require.Equal(t, want, balance)
}

// requireEscrowConserved checks that the escrow holds exactly the wagers of
// the running battles.
func requireEscrowConserved(t *testing.T, ctx context.Context, d *testDomains) {
	t.Helper()
	battles, err := d.battleRepo.GetAll(ctx)
	require.NoError(t, err)

	var escrowed uint64
	for i := range battles {
		escrowed += battles[i].Escrowed()
	}

	requireBalance(t, ctx, d, testutil.Escrow(ctx), escrowed)
}

func requirePetLock(t *testing.T, ctx context.Context, d *testDomains, petID string, kind entity.PetLockKind) {
	t.Helper()
	pet, err := d.petRepo.GetByID(ctx, petID)
	require.NoError(t, err)
	require.Equal(t, kind, pet.Lock.Kind)
}

func signPermit(t *testing.T, ctx context.Context, name, permitName string, permissions ...string) model.Permit {
	t.Helper()
	cfg := xcontext.Configs(ctx).Game
	permit := model.Permit{
		Subject:        testutil.Address(name),
		PermitName:     permitName,
		AllowedTargets: []string{cfg.ContractAddress},
		Permissions:    permissions,
		ChainID:        cfg.ChainID,
	}

	return resignPermit(t, name, permit)
}

// resignPermit signs permit with the key of name, whoever the subject is.
func resignPermit(t *testing.T, name string, permit model.Permit) model.Permit {
	t.Helper()
	payload, err := PermitPayload(permit)
	require.NoError(t, err)

	permit.Signature, err = ethutil.SignText(testutil.PrivateKey(name), payload)
	require.NoError(t, err)
	return permit
}
