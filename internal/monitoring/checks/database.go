package checks

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/database"
	"github.com/charlesng35/entrybox/internal/monitoring"
)

// Database returns a probe that pings the connection pool.
func Database(db *gorm.DB) monitoring.Check {
	return monitoring.Check{
		Name: "database",
		Probe: func(ctx context.Context) error {
			if db == nil {
				return errors.New("database not configured")
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

// Schema returns a probe that fails until every served table exists.
func Schema(db *gorm.DB, tables []database.Table) monitoring.Check {
	return monitoring.Check{
		Name: "schema",
		Probe: func(ctx context.Context) error {
			if db == nil {
				return errors.New("database not configured")
			}
			migrator := db.WithContext(ctx).Migrator()
			for _, table := range tables {
				if !migrator.HasTable(string(table)) {
					return fmt.Errorf("table %s is missing", table)
				}
			}
			return nil
		},
	}
}
