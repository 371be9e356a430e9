package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/models"
)

// Table names a schema managed by AutoMigrate.
type Table string

const (
	TableEntries  Table = "entries"
	TableMessages Table = "messages"
)

// AllTables lists every managed table.
func AllTables() []Table {
	return []Table{TableEntries, TableMessages}
}

func (t Table) model() (any, error) {
	switch t {
	case TableEntries:
		return &models.Entry{}, nil
	case TableMessages:
		return &models.Message{}, nil
	default:
		return nil, fmt.Errorf("unknown table %q", string(t))
	}
}

// AutoMigrate creates any missing schema for the given tables, or for every
// table when none are named. Existing data is left untouched.
func AutoMigrate(db *gorm.DB, tables ...Table) error {
	if db == nil {
		return errors.New("nil database handle")
	}
	if len(tables) == 0 {
		tables = AllTables()
	}

	dst := make([]any, 0, len(tables))
	for _, table := range tables {
		model, err := table.model()
		if err != nil {
			return err
		}
		dst = append(dst, model)
	}

	if err := db.AutoMigrate(dst...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
