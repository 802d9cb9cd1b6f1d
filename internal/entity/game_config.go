package entity

import "time"

// GameConfigID is the primary key of the only GameConfig row.
const GameConfigID = 1

type GameConfig struct {
	ID        int `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Admin    string
	MaxStats int
	Entropy  string

	PetCounter     uint64
	BattleCounter  uint64
	MessageCounter uint64
}

type Minter struct {
	Address   string `gorm:"primaryKey"`
	CreatedAt time.Time
}

type RevokedPermit struct {
	Subject    string `gorm:"primaryKey"`
	PermitName string `gorm:"primaryKey"`
	CreatedAt  time.Time
}
