package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/petquest/pkg/enum"
)

type QuestType string

var (
	QuestTrialOfResilience = enum.New(QuestType("Trial Of Resilience"))
	QuestTrialOfTitans     = enum.New(QuestType("Trial Of Titans"))
	QuestTrialOfEndurance  = enum.New(QuestType("Trial Of Endurance"))
	QuestTrialOfWisdom     = enum.New(QuestType("Trial Of Wisdom"))
)

// Stat returns the pet stat tested by the quest type.
func (t QuestType) Stat() Stat {
	switch t {
	case QuestTrialOfResilience:
		return StatHealth
	case QuestTrialOfTitans:
		return StatStrength
	case QuestTrialOfEndurance:
		return StatStamina
	case QuestTrialOfWisdom:
		return StatIntelligence
	}

	return ""
}

type QuestOutcome string

var (
	QuestOutcomeFail            = enum.New(QuestOutcome("Fail"))
	QuestOutcomePass            = enum.New(QuestOutcome("Pass"))
	QuestOutcomeExceptionalPass = enum.New(QuestOutcome("Exceptional Pass"))
)

type QuestStatus string

var (
	QuestStatusAvailable  = enum.New(QuestStatus("available"))
	QuestStatusInProgress = enum.New(QuestStatus("in_progress"))
	QuestStatusClaimable  = enum.New(QuestStatus("claimable"))
	QuestStatusOnCooldown = enum.New(QuestStatus("on_cooldown"))
)

type QuestLoot struct {
	Fail            uint64
	Pass            uint64
	ExceptionalPass uint64
}

func (l QuestLoot) For(outcome QuestOutcome) uint64 {
	switch outcome {
	case QuestOutcomePass:
		return l.Pass
	case QuestOutcomeExceptionalPass:
		return l.ExceptionalPass
	}

	return l.Fail
}

type QuestSlot struct {
	Owner     string    `gorm:"primaryKey"`
	QuestType QuestType `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	BaseLoot            int
	Difficulty          int
	DifficultyIncrement int
	TimesWon            int

	PetID             sql.NullString
	Outcome           QuestOutcome
	Loot              QuestLoot `gorm:"embedded;embeddedPrefix:loot_"`
	StartedAt         sql.NullTime
	FinishedExploring sql.NullTime
	FinishedCooldown  sql.NullTime
}

// Status derives the slot status at the given message time.
func (s *QuestSlot) Status(now time.Time) QuestStatus {
	if s.PetID.Valid {
		if s.FinishedExploring.Valid && !now.Before(s.FinishedExploring.Time) {
			return QuestStatusClaimable
		}
		return QuestStatusInProgress
	}

	if s.FinishedCooldown.Valid && now.Before(s.FinishedCooldown.Time) {
		return QuestStatusOnCooldown
	}

	return QuestStatusAvailable
}

type QuestHistory struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time

	Owner         string `gorm:"index"`
	PetID         string
	QuestType     QuestType
	TimeStarted   time.Time
	TimeEnded     time.Time
	LootCollected uint64
	Outcome       QuestOutcome
}
