package entity

import (
	"context"
	"time"

	"github.com/questx-lab/petquest/pkg/xcontext"
	"gorm.io/gorm"
)

type Base struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type SnowFlakeBase struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tables lists every model owned by the engine, in migration order.
func Tables() []any {
	return []any{
		&GameConfig{},
		&Minter{},
		&RevokedPermit{},
		&Pet{},
		&QuestSlot{},
		&QuestHistory{},
		&Battle{},
		&TokenBalance{},
		&TokenAllowance{},
		&PetToken{},
		&LedgerTransaction{},
	}
}

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(Tables()...)
}
