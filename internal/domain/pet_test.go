package domain

import (
	"context"
	"testing"

	"github.com/questx-lab/petquest/internal/domain/outcome"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/pkg/enum"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_petDomain_Mint(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		req     *model.MintPetRequest
		setup   func(context.Context, *testDomains)
		want    []string
		wantErr errorx.Code
	}{
		{
			name:   "mint for self",
			sender: testutil.Alice,
			req:    &model.MintPetRequest{Recipient: testutil.Alice, Amount: 2},
			want:   []string{"PET_0", "PET_1"},
		},
		{
			name:   "amount defaults to one",
			sender: testutil.Alice,
			req:    &model.MintPetRequest{Recipient: testutil.Alice},
			want:   []string{"PET_0"},
		},
		{
			name:   "admin mints for others",
			sender: testutil.Admin,
			req:    &model.MintPetRequest{Recipient: testutil.Alice},
			want:   []string{"PET_0"},
		},
		{
			name:   "minter mints for others",
			sender: testutil.Bob,
			req:    &model.MintPetRequest{Recipient: testutil.Alice},
			setup: func(ctx context.Context, d *testDomains) {
				require.NoError(t, d.gameConfigRepo.AddMinters(ctx, []string{testutil.Bob}))
			},
			want: []string{"PET_0"},
		},
		{
			name:    "stranger cannot mint for others",
			sender:  testutil.Bob,
			req:     &model.MintPetRequest{Recipient: testutil.Alice},
			wantErr: errorx.Unauthorized,
		},
		{
			name:    "amount exceeds the limit",
			sender:  testutil.Alice,
			req:     &model.MintPetRequest{Recipient: testutil.Alice, Amount: 11},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "negative amount",
			sender:  testutil.Alice,
			req:     &model.MintPetRequest{Recipient: testutil.Alice, Amount: -1},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "invalid recipient",
			sender:  testutil.Alice,
			req:     &model.MintPetRequest{Recipient: "alice"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "no sender",
			req:     &model.MintPetRequest{Recipient: testutil.Alice},
			wantErr: errorx.Unauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.InsertGameConfig(ctx)
			d := newTestDomains(ctx, outcome.NewLinearQuestPolicy(), outcome.NewLinearBattlePolicy())
			if tt.setup != nil {
				tt.setup(ctx, d)
			}

			if tt.sender != "" {
				ctx = testutil.AsUser(ctx, tt.sender)
			}

			got, err := d.pet.Mint(ctx, tt.req)
			if tt.wantErr != 0 {
				requireErrorCode(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got.PetIDs)

			tokens, err := d.bridge.TokensOf(ctx, testutil.Alice)
			require.NoError(t, err)
			require.Equal(t, tt.want, tokens)

			for _, id := range got.PetIDs {
				pet, err := d.petRepo.GetByID(ctx, id)
				require.NoError(t, err)
				require.True(t, pet.Lock.IsFree())

				for _, stat := range enum.Values[entity.Stat]() {
					require.GreaterOrEqual(t, pet.Current.Get(stat), 5)
					require.LessOrEqual(t, pet.Current.Get(stat), 8)
					require.GreaterOrEqual(t, pet.Max.Get(stat), 12)
					require.LessOrEqual(t, pet.Max.Get(stat), 20)
					require.Equal(t, pet.Current.Get(stat)*5, pet.UpgradeCosts.Get(stat))
				}
			}

			slots, err := d.questSlotRepo.GetByOwner(ctx, testutil.Alice)
			require.NoError(t, err)
			require.Len(t, slots, 4)
			for _, slot := range slots {
				require.Equal(t, entity.QuestStatusAvailable, slot.Status(testutil.Now))
				require.GreaterOrEqual(t, slot.BaseLoot, 1)
				require.LessOrEqual(t, slot.BaseLoot, 5)
				require.GreaterOrEqual(t, slot.Difficulty, 1)
				require.LessOrEqual(t, slot.Difficulty, 3)
			}
		})
	}
}

func Test_petDomain_Mint_NotInstantiated(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Alice)
	d := newTestDomains(ctx, outcome.NewLinearQuestPolicy(), outcome.NewLinearBattlePolicy())

	_, err := d.pet.Mint(ctx, &model.MintPetRequest{Recipient: testutil.Alice})
	requireErrorCode(t, err, errorx.InvalidState)
}

func Test_petDomain_Release(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		petID   string
		busy    bool
		wantErr errorx.Code
	}{
		{
			name:   "happy case",
			sender: testutil.Alice,
			petID:  "PET_0",
		},
		{
			name:    "not the owner",
			sender:  testutil.Bob,
			petID:   "PET_0",
			wantErr: errorx.Unauthorized,
		},
		{
			name:    "unknown pet",
			sender:  testutil.Alice,
			petID:   "PET_9",
			wantErr: errorx.NotFound,
		},
		{
			name:    "busy pet",
			sender:  testutil.Alice,
			petID:   "PET_0",
			busy:    true,
			wantErr: errorx.InvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.InsertGameConfig(ctx)
			d := newTestDomains(ctx, outcome.NewLinearQuestPolicy(), outcome.NewLinearBattlePolicy())
			pet := testutil.InsertPet(ctx, testutil.Alice, testutil.UniformStats(5), testutil.UniformStats(10))
			if tt.busy {
				require.NoError(t, d.petRepo.UpdateLock(ctx, pet.ID, entity.PetLock{Kind: entity.PetLockOnQuest}))
			}

			_, err := d.pet.Release(testutil.AsUser(ctx, tt.sender), &model.ReleasePetRequest{PetID: tt.petID})
			if tt.wantErr != 0 {
				requireErrorCode(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)

			_, err = d.bridge.OwnerOf(ctx, pet.ID)
			requireErrorCode(t, err, errorx.NotFound)

			ids, err := d.petRepo.GetAllIDs(ctx)
			require.NoError(t, err)
			require.Empty(t, ids)
		})
	}
}

func Test_petDomain_Upgrade(t *testing.T) {
	tests := []struct {
		name      string
		sender    string
		stat      string
		current   int
		max       int
		funds     uint64
		want      *model.UpgradePetStatsResponse
		wantFunds uint64
		wantErr   errorx.Code
	}{
		{
			name:      "happy case",
			sender:    testutil.Alice,
			stat:      "strength",
			current:   5,
			max:       10,
			funds:     100,
			want:      &model.UpgradePetStatsResponse{Value: 6, Cost: 25},
			wantFunds: 75,
		},
		{
			name:    "stat is maximal",
			sender:  testutil.Alice,
			stat:    "luck",
			current: 10,
			max:     10,
			funds:   100,
			wantErr: errorx.InvalidState,
		},
		{
			name:    "unknown stat",
			sender:  testutil.Alice,
			stat:    "charisma",
			current: 5,
			max:     10,
			funds:   100,
			wantErr: errorx.BadRequest,
		},
		{
			name:    "not enough tokens",
			sender:  testutil.Alice,
			stat:    "health",
			current: 5,
			max:     10,
			funds:   24,
			wantErr: errorx.InsufficientFunds,
		},
		{
			name:    "not the owner",
			sender:  testutil.Bob,
			stat:    "health",
			current: 5,
			max:     10,
			funds:   100,
			wantErr: errorx.Unauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.InsertGameConfig(ctx)
			d := newTestDomains(ctx, outcome.NewLinearQuestPolicy(), outcome.NewLinearBattlePolicy())
			pet := testutil.InsertPet(ctx, testutil.Alice, testutil.UniformStats(tt.current), testutil.UniformStats(tt.max))
			testutil.Fund(ctx, testutil.Alice, tt.funds)

			got, err := d.pet.Upgrade(testutil.AsUser(ctx, tt.sender), &model.UpgradePetStatsRequest{
				PetID: pet.ID,
				Stat:  tt.stat,
			})
			if tt.wantErr != 0 {
				requireErrorCode(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			requireBalance(t, ctx, d, testutil.Alice, tt.wantFunds)

			upgraded, err := d.petRepo.GetByID(ctx, pet.ID)
			require.NoError(t, err)
			require.Equal(t, tt.want.Value, upgraded.Current.Strength)
			require.Equal(t, tt.want.Value*5, upgraded.UpgradeCosts.Strength)
			require.Equal(t, tt.current, upgraded.Current.Health)
		})
	}
}

func Test_petDomain_Upgrade_NeverExceedsMax(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertGameConfig(ctx)
	d := newTestDomains(ctx, outcome.NewLinearQuestPolicy(), outcome.NewLinearBattlePolicy())
	pet := testutil.InsertPet(ctx, testutil.Alice, testutil.UniformStats(5), testutil.UniformStats(8))
	testutil.Fund(ctx, testutil.Alice, 1000)
	ctx = testutil.AsUser(ctx, testutil.Alice)

	var lastCost uint64
	for i := 0; i < 3; i++ {
		got, err := d.pet.Upgrade(ctx, &model.UpgradePetStatsRequest{PetID: pet.ID, Stat: "stamina"})
		require.NoError(t, err)
		require.GreaterOrEqual(t, got.Cost, lastCost)
		lastCost = got.Cost
	}

	_, err := d.pet.Upgrade(ctx, &model.UpgradePetStatsRequest{PetID: pet.ID, Stat: "stamina"})
	requireErrorCode(t, err, errorx.InvalidState)

	upgraded, err := d.petRepo.GetByID(ctx, pet.ID)
	require.NoError(t, err)
	require.Equal(t, 8, upgraded.Current.Stamina)
	requireBalance(t, ctx, d, testutil.Alice, 1000-25-30-35)
}
