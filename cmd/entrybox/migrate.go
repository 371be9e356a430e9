package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesng35/entrybox/internal/api"
	"github.com/charlesng35/entrybox/internal/app"
	"github.com/charlesng35/entrybox/internal/database"
	"github.com/charlesng35/entrybox/pkg/logger"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadApplicationConfig(*configPath)
			if err != nil {
				return err
			}
			if err := app.ConfigureLogging(cfg.Server); err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}
			defer logger.Sync() // best effort

			tables := api.ServedTables(cfg)
			if all {
				tables = database.AllTables()
			}

			if err := migrate(cfg, tables); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d table(s)\n", len(tables))
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Migrate every table regardless of service.mode")
	return cmd
}

func migrate(cfg *app.Config, tables []database.Table) error {
	log := logger.WithModule("migrate")

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	if err := database.AutoMigrate(db, tables...); err != nil {
		return err
	}

	names := make([]string, 0, len(tables))
	for _, table := range tables {
		names = append(names, string(table))
	}
	log.Info("schema ready", zap.Strings("tables", names))
	return nil
}
