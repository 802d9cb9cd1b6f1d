package main

import (
	"github.com/questx-lab/petquest/internal/entity"
	"github.com/questx-lab/petquest/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func (s *srv) startMigrate(*cli.Context) error {
	db := s.newDatabase()
	s.ctx = xcontext.WithDB(s.ctx, db)

	created := []string{}
	for _, table := range entity.Tables() {
		if !db.Migrator().HasTable(table) {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(table); err == nil {
				created = append(created, stmt.Schema.Table)
			}
		}
	}

	s.migrateDB()

	xcontext.Logger(s.ctx).Infof("Database is migrated, %d new tables %v", len(created), created)
	return nil
}
