package domain

import (
	"testing"
	"time"

	"github.com/questx-lab/petquest/internal/domain/outcome"
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/internal/model"
	"github.com/questx-lab/petquest/pkg/errorx"
	"github.com/questx-lab/petquest/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_questLoot(t *testing.T) {
	tests := []struct {
		name string
		slot *entity.QuestSlot
		want entity.QuestLoot
	}{
		{
			name: "smallest catalog row",
			slot: &entity.QuestSlot{BaseLoot: 1, Difficulty: 1},
			want: entity.QuestLoot{Fail: 1, Pass: 2, ExceptionalPass: 4},
		},
		{
			name: "with difficulty increment",
			slot: &entity.QuestSlot{BaseLoot: 5, Difficulty: 3, DifficultyIncrement: 2},
			want: entity.QuestLoot{Fail: 4, Pass: 10, ExceptionalPass: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, questLoot(tt.slot))
		})
	}
}

func Test_questDomain_Lifecycle(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertGameConfig(ctx)
	d := newTestDomains(ctx, fixedQuestPolicy{entity.QuestOutcomePass}, outcome.NewLinearBattlePolicy())
	pet := testutil.InsertPet(ctx, testutil.Alice, testutil.UniformStats(5), testutil.UniformStats(10))
	other := testutil.InsertPet(ctx, testutil.Alice, testutil.UniformStats(5), testutil.UniformStats(10))
	ctx = testutil.AsUser(ctx, testutil.Alice)

	sent, err := d.quest.Send(ctx, &model.SendPetOnQuestRequest{
		PetID:     pet.ID,
		QuestType: "Trial Of Titans",
	})
	require.NoError(t, err)
	require.Equal(t, "in_progress", sent.Quest.Status)
	require.Equal(t, "strength", sent.Quest.Stat)
	require.Equal(t, pet.ID, sent.Quest.PetID)
	require.Empty(t, sent.Quest.Outcome)
	requirePetLock(t, ctx, d, pet.ID, entity.PetLockOnQuest)

	slot, err := d.questSlotRepo.Get(ctx, testutil.Alice, entity.QuestTrialOfTitans)
	require.NoError(t, err)
	loot := slot.Loot.Pass
	require.Equal(t, questLoot(slot), slot.Loot)

	// Other slots are created with the first one.
	slots, err := d.questSlotRepo.GetByOwner(ctx, testutil.Alice)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	// The slot is taken and the pet is busy.
	_, err = d.quest.Send(ctx, &model.SendPetOnQuestRequest{PetID: other.ID, QuestType: "Trial Of Titans"})
	requireErrorCode(t, err, errorx.InvalidState)
	_, err = d.quest.Send(ctx, &model.SendPetOnQuestRequest{PetID: pet.ID, QuestType: "Trial Of Wisdom"})
	requireErrorCode(t, err, errorx.InvalidState)

	// Too early.
	_, err = d.quest.Claim(testutil.At(ctx, 29*time.Second), &model.ClaimQuestRewardsRequest{QuestType: "Trial Of Titans"})
	requireErrorCode(t, err, errorx.InvalidState)

	claimed, err := d.quest.Claim(testutil.At(ctx, 30*time.Second), &model.ClaimQuestRewardsRequest{
		QuestType: "Trial Of Titans",
	})
	require.NoError(t, err)
	require.Equal(t, &model.ClaimQuestRewardsResponse{PetID: pet.ID, Outcome: "Pass", Loot: loot}, claimed)
	requireBalance(t, ctx, d, testutil.Alice, loot)
	requirePetLock(t, ctx, d, pet.ID, entity.PetLockFree)

	// Double claim.
	_, err = d.quest.Claim(testutil.At(ctx, 31*time.Second), &model.ClaimQuestRewardsRequest{QuestType: "Trial Of Titans"})
	requireErrorCode(t, err, errorx.InvalidState)

	slot, err = d.questSlotRepo.Get(ctx, testutil.Alice, entity.QuestTrialOfTitans)
	require.NoError(t, err)
	require.Equal(t, 1, slot.TimesWon)
	require.LessOrEqual(t, slot.DifficultyIncrement, 1)
	require.False(t, slot.PetID.Valid)
	require.Equal(t, entity.QuestStatusOnCooldown, slot.Status(testutil.Now.Add(89*time.Second)))
	require.Equal(t, entity.QuestStatusAvailable, slot.Status(testutil.Now.Add(90*time.Second)))

	history, total, err := NewHistoryLog(d.questHistoryRepo).List(ctx, testutil.Alice, 0, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, pet.ID, history[0].PetID)
	require.Equal(t, entity.QuestOutcomePass, history[0].Outcome)
	require.Equal(t, loot, history[0].LootCollected)
	require.True(t, history[0].TimeStarted.Equal(testutil.Now))
	require.True(t, history[0].TimeEnded.Equal(testutil.Now.Add(30*time.Second)))

	// Cooling down.
	_, err = d.quest.Send(testutil.At(ctx, 60*time.Second), &model.SendPetOnQuestRequest{
		PetID:     pet.ID,
		QuestType: "Trial Of Titans",
	})
	requireErrorCode(t, err, errorx.InvalidState)

	_, err = d.quest.Send(testutil.At(ctx, 90*time.Second), &model.SendPetOnQuestRequest{
		PetID:     pet.ID,
		QuestType: "Trial Of Titans",
	})
	require.NoError(t, err)
}

func Test_questDomain_Claim_Outcomes(t *testing.T) {
	tests := []struct {
		name          string
		result        entity.QuestOutcome
		wantTimesWon  int
		wantIncrement [2]int
	}{
		{
			name:          "fail",
			result:        entity.QuestOutcomeFail,
			wantTimesWon:  0,
			wantIncrement: [2]int{0, 0},
		},
		{
			name:          "pass",
			result:        entity.QuestOutcomePass,
			wantTimesWon:  1,
			wantIncrement: [2]int{0, 1},
		},
		{
			name:          "exceptional pass",
			result:        entity.QuestOutcomeExceptionalPass,
			wantTimesWon:  1,
			wantIncrement: [2]int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.MockContext()
			testutil.InsertGameConfig(ctx)
			d := newTestDomains(ctx, fixedQuestPolicy{tt.result}, outcome.NewLinearBattlePolicy())
			pet := testutil.InsertPet(ctx, testutil.Alice, testutil.UniformStats(5), testutil.UniformStats(10))
			ctx = testutil.AsUser(ctx, testutil.Alice)

			_, err := d.quest.Send(ctx, &model.SendPetOnQuestRequest{PetID: pet.ID, QuestType: "Trial Of Wisdom"})
			require.NoError(t, err)

			slot, err := d.questSlotRepo.Get(ctx, testutil.Alice, entity.QuestTrialOfWisdom)
			require.NoError(t, err)

			got, err := d.quest.Claim(testutil.At(ctx, time.Minute), &model.ClaimQuestRewardsRequest{
				QuestType: "Trial Of Wisdom",
			})
			require.NoError(t, err)
			require.Equal(t, string(tt.result), got.Outcome)
			require.Equal(t, slot.Loot.For(tt.result), got.Loot)
			requireBalance(t, ctx, d, testutil.Alice, got.Loot)

			slot, err = d.questSlotRepo.Get(ctx, testutil.Alice, entity.QuestTrialOfWisdom)
			require.NoError(t, err)
			require.Equal(t, tt.wantTimesWon, slot.TimesWon)
			require.GreaterOrEqual(t, slot.DifficultyIncrement, tt.wantIncrement[0])
			require.LessOrEqual(t, slot.DifficultyIncrement, tt.wantIncrement[1])
			require.Equal(t, entity.QuestLoot{}, slot.Loot)
		})
	}
}

func Test_questDomain_Errors(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.InsertGameConfig(ctx)
	d := newTestDomains(ctx, outcome.NewLinearQuestPolicy(), outcome.NewLinearBattlePolicy())
	pet := testutil.InsertPet(ctx, testutil.Alice, testutil.UniformStats(5), testutil.UniformStats(10))

	tests := []struct {
		name    string
		sender  string
		send    *model.SendPetOnQuestRequest
		claim   *model.ClaimQuestRewardsRequest
		wantErr errorx.Code
	}{
		{
			name:    "send on unknown quest",
			sender:  testutil.Alice,
			send:    &model.SendPetOnQuestRequest{PetID: pet.ID, QuestType: "Trial Of Charm"},
			wantErr: errorx.NotFound,
		},
		{
			name:    "send a pet of someone else",
			sender:  testutil.Bob,
			send:    &model.SendPetOnQuestRequest{PetID: pet.ID, QuestType: "Trial Of Titans"},
			wantErr: errorx.Unauthorized,
		},
		{
			name:    "send an unknown pet",
			sender:  testutil.Alice,
			send:    &model.SendPetOnQuestRequest{PetID: "PET_42", QuestType: "Trial Of Titans"},
			wantErr: errorx.NotFound,
		},
		{
			name:    "claim unknown quest",
			sender:  testutil.Alice,
			claim:   &model.ClaimQuestRewardsRequest{QuestType: "Trial Of Charm"},
			wantErr: errorx.NotFound,
		},
		{
			name:    "claim a quest never started",
			sender:  testutil.Alice,
			claim:   &model.ClaimQuestRewardsRequest{QuestType: "Trial Of Endurance"},
			wantErr: errorx.InvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.send != nil {
				_, err = d.quest.Send(testutil.AsUser(ctx, tt.sender), tt.send)
			} else {
				_, err = d.quest.Claim(testutil.AsUser(ctx, tt.sender), tt.claim)
			}

			requireErrorCode(t, err, tt.wantErr)
		})
	}
}
