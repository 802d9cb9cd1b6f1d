package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBattle_Escrowed(t *testing.T) {
	tests := []struct {
		name   string
		battle Battle
		want   uint64
	}{
		{
			name:   "pending holds the initiator wager",
			battle: Battle{PetID: "PET_0", OtherPetID: "PET_1", Wager: 20, Status: BattleStatusPending},
			want:   20,
		},
		{
			name:   "accepted holds both wagers",
			battle: Battle{PetID: "PET_0", OtherPetID: "PET_1", Wager: 20, Status: BattleStatusAccepted},
			want:   40,
		},
		{
			name: "loser claimed first",
			battle: Battle{
				PetID: "PET_0", OtherPetID: "PET_1", Wager: 20,
				Status: BattleStatusAccepted, Outcome: true, OtherPetClaimed: true,
			},
			want: 40,
		},
		{
			name: "winner claimed",
			battle: Battle{
				PetID: "PET_0", OtherPetID: "PET_1", Wager: 20,
				Status: BattleStatusAccepted, Outcome: false, OtherPetClaimed: true,
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.battle.Escrowed())
		})
	}
}

func TestStats_GetSet(t *testing.T) {
	var s Stats
	for i, stat := range []Stat{StatHealth, StatStrength, StatStamina, StatIntelligence, StatLuck} {
		s.Set(stat, i+1)
		require.Equal(t, i+1, s.Get(stat))
	}
	require.Equal(t, 15, s.Sum())
}

func TestParseBattleWagerReference(t *testing.T) {
	tests := []struct {
		name      string
		reference string
		wantID    string
		wantSide  BattleSide
		wantOK    bool
	}{
		{
			name:      "challenger",
			reference: BattleWagerReference("BATTLE_3", BattleSideChallenger),
			wantID:    "BATTLE_3",
			wantSide:  BattleSideChallenger,
			wantOK:    true,
		},
		{
			name:      "defender",
			reference: BattleWagerReference("BATTLE_0", BattleSideDefender),
			wantID:    "BATTLE_0",
			wantSide:  BattleSideDefender,
			wantOK:    true,
		},
		{name: "empty", reference: ""},
		{name: "unknown side", reference: "battle:BATTLE_0:referee"},
		{name: "other object", reference: "quest:alice:explore"},
		{name: "missing id", reference: "battle::challenger"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, side, ok := ParseBattleWagerReference(tt.reference)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantID, id)
			require.Equal(t, tt.wantSide, side)
		})
	}
}
