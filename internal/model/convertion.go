package model

import (
	"database/sql"
	"time"

	"github.com/questx-lab/petquest/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.UTC().Format(DefaultTimeLayout)
}

func ConvertStats(stats entity.Stats) Stats {
	return Stats{
		Health:       stats.Health,
		Strength:     stats.Strength,
		Stamina:      stats.Stamina,
		Intelligence: stats.Intelligence,
		Luck:         stats.Luck,
	}
}

func ConvertPet(pet *entity.Pet, owner string) Pet {
	if pet == nil {
		return Pet{}
	}

	kind := pet.Lock.Kind
	if kind == "" {
		kind = entity.PetLockFree
	}

	return Pet{
		ID:           pet.ID,
		Owner:        owner,
		Current:      ConvertStats(pet.Current),
		Max:          ConvertStats(pet.Max),
		UpgradeCosts: ConvertStats(pet.UpgradeCosts),
		Lock: PetLock{
			Kind:      string(kind),
			QuestType: pet.Lock.QuestType.String,
			StartedAt: formatNullTime(pet.Lock.StartedAt),
			EndsAt:    formatNullTime(pet.Lock.EndsAt),
			BattleID:  pet.Lock.BattleID.String,
		},
	}
}

func ConvertQuest(slot *entity.QuestSlot, now time.Time) Quest {
	if slot == nil {
		return Quest{}
	}

	status := slot.Status(now)

	// The outcome is fixed when the pet leaves, but stays hidden until the pet
	// is back.
	outcome := ""
	if status == entity.QuestStatusClaimable {
		outcome = string(slot.Outcome)
	}

	return Quest{
		QuestType:           string(slot.QuestType),
		Stat:                string(slot.QuestType.Stat()),
		Status:              string(status),
		Outcome:             outcome,
		BaseLoot:            slot.BaseLoot,
		Difficulty:          slot.Difficulty,
		DifficultyIncrement: slot.DifficultyIncrement,
		TimesWon:            slot.TimesWon,
		PetID:               slot.PetID.String,
		Loot: QuestLoot{
			Fail:            slot.Loot.Fail,
			Pass:            slot.Loot.Pass,
			ExceptionalPass: slot.Loot.ExceptionalPass,
		},
		StartedAt:         formatNullTime(slot.StartedAt),
		FinishedExploring: formatNullTime(slot.FinishedExploring),
		FinishedCooldown:  formatNullTime(slot.FinishedCooldown),
	}
}

func ConvertQuestHistory(history *entity.QuestHistory) QuestHistoryEntry {
	if history == nil {
		return QuestHistoryEntry{}
	}

	return QuestHistoryEntry{
		PetID:         history.PetID,
		QuestType:     string(history.QuestType),
		TimeStarted:   history.TimeStarted.UTC().Format(DefaultTimeLayout),
		TimeEnded:     history.TimeEnded.UTC().Format(DefaultTimeLayout),
		LootCollected: history.LootCollected,
		Outcome:       string(history.Outcome),
	}
}

func ConvertBattle(battle *entity.Battle) Battle {
	if battle == nil {
		return Battle{}
	}

	result := Battle{
		ID:              battle.ID,
		PetID:           battle.PetID,
		OtherPetID:      battle.OtherPetID,
		Initiator:       battle.Initiator,
		Opponent:        battle.Opponent.String,
		Wager:           battle.Wager,
		Status:          string(battle.Status),
		PetClaimed:      battle.PetClaimed,
		OtherPetClaimed: battle.OtherPetClaimed,
		CreatedAt:       battle.CreatedAt.UTC().Format(DefaultTimeLayout),
	}

	if battle.Status == entity.BattleStatusAccepted {
		result.WinnerPetID = battle.WinnerPetID()
	}

	return result
}
