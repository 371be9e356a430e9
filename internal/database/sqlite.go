package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	puresqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openSQLite opens either the cgo (mattn) or the pure Go (modernc) driver.
// SQLite allows a single writer, so the pool is pinned to one connection.
func openSQLite(driver string, cfg Config, gormCfg *gorm.Config) (*gorm.DB, error) {
	dsn, err := sqliteDSN(driver, cfg)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	if driver == DriverSQLitePure {
		dialector = puresqlite.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

func sqliteDSN(driver string, cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" || strings.EqualFold(path, ":memory:") {
		// A unique name keeps separate handles in one process isolated.
		return fmt.Sprintf("file:entrybox-%s?mode=memory&cache=shared", uuid.NewString()), nil
	}

	if err := ensureDir(path); err != nil {
		return "", err
	}

	if driver == DriverSQLitePure {
		return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", filepath.ToSlash(path)), nil
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", filepath.ToSlash(path)), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
