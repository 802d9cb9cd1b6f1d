package entity

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/questx-lab/petquest/pkg/enum"
)

type BattleStatus string

var (
	BattleStatusPending  = enum.New(BattleStatus("pending"))
	BattleStatusAccepted = enum.New(BattleStatus("accepted"))
)

// BattleSide names who paid a wager into the escrow.
type BattleSide string

var (
	BattleSideChallenger = enum.New(BattleSide("challenger"))
	BattleSideDefender   = enum.New(BattleSide("defender"))
)

type Battle struct {
	Base

	PetID      string `gorm:"index"`
	OtherPetID string `gorm:"index"`

	Initiator string
	Opponent  sql.NullString
	Wager     uint64
	Status    BattleStatus

	// Outcome is true when the challenger (PetID) wins. It is only meaningful
	// once the battle is accepted.
	Outcome         bool
	PetClaimed      bool
	OtherPetClaimed bool
}

func (b *Battle) WinnerPetID() string {
	if b.Outcome {
		return b.PetID
	}

	return b.OtherPetID
}

func (b *Battle) Claimed(petID string) bool {
	if petID == b.PetID {
		return b.PetClaimed
	}

	return b.OtherPetClaimed
}

func (b *Battle) SetClaimed(petID string) {
	if petID == b.PetID {
		b.PetClaimed = true
	} else {
		b.OtherPetClaimed = true
	}
}

// Escrowed is the amount of tokens the engine holds on behalf of the battle.
func (b *Battle) Escrowed() uint64 {
	switch b.Status {
	case BattleStatusPending:
		return b.Wager
	case BattleStatusAccepted:
		if b.Claimed(b.WinnerPetID()) {
			return 0
		}
		return 2 * b.Wager
	}

	return 0
}

func BattleID(counter uint64) string {
	return fmt.Sprintf("BATTLE_%d", counter)
}

const battleWagerPrefix = "battle:"

// BattleWagerReference tags the ledger pull of one side's wager.
func BattleWagerReference(battleID string, side BattleSide) string {
	return battleWagerPrefix + battleID + ":" + string(side)
}

func ParseBattleWagerReference(reference string) (string, BattleSide, bool) {
	rest, ok := strings.CutPrefix(reference, battleWagerPrefix)
	if !ok {
		return "", "", false
	}

	battleID, side, ok := strings.Cut(rest, ":")
	if !ok || battleID == "" {
		return "", "", false
	}

	switch BattleSide(side) {
	case BattleSideChallenger, BattleSideDefender:
		return battleID, BattleSide(side), true
	}

	return "", "", false
}
