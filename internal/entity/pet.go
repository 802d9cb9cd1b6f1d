package entity

import (
	"database/sql"
	"fmt"

	"github.com/questx-lab/petquest/pkg/enum"
)

type Stat string

var (
	StatHealth       = enum.New(Stat("health"))
	StatStrength     = enum.New(Stat("strength"))
	StatStamina      = enum.New(Stat("stamina"))
	StatIntelligence = enum.New(Stat("intelligence"))
	StatLuck         = enum.New(Stat("luck"))
)

type Stats struct {
	Health       int
	Strength     int
	Stamina      int
	Intelligence int
	Luck         int
}

func (s Stats) Get(stat Stat) int {
	switch stat {
	case StatHealth:
		return s.Health
	case StatStrength:
		return s.Strength
	case StatStamina:
		return s.Stamina
	case StatIntelligence:
		return s.Intelligence
	case StatLuck:
		return s.Luck
	}

	return 0
}

func (s *Stats) Set(stat Stat, value int) {
	switch stat {
	case StatHealth:
		s.Health = value
	case StatStrength:
		s.Strength = value
	case StatStamina:
		s.Stamina = value
	case StatIntelligence:
		s.Intelligence = value
	case StatLuck:
		s.Luck = value
	}
}

func (s Stats) Sum() int {
	return s.Health + s.Strength + s.Stamina + s.Intelligence + s.Luck
}

type PetLockKind string

var (
	PetLockFree     = enum.New(PetLockKind("free"))
	PetLockOnQuest  = enum.New(PetLockKind("on_quest"))
	PetLockOnBattle = enum.New(PetLockKind("on_battle"))
)

type PetLock struct {
	Kind      PetLockKind `gorm:"index"`
	QuestType sql.NullString
	StartedAt sql.NullTime
	EndsAt    sql.NullTime
	BattleID  sql.NullString
}

func (l PetLock) IsFree() bool {
	return l.Kind == "" || l.Kind == PetLockFree
}

type Pet struct {
	Base

	Serial uint64 `gorm:"uniqueIndex"`

	Current      Stats `gorm:"embedded;embeddedPrefix:current_"`
	Max          Stats `gorm:"embedded;embeddedPrefix:max_"`
	UpgradeCosts Stats `gorm:"embedded;embeddedPrefix:upgrade_cost_"`

	Lock PetLock `gorm:"embedded;embeddedPrefix:lock_"`
}

func PetID(counter uint64) string {
	return fmt.Sprintf("PET_%d", counter)
}
