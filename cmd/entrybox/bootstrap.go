package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/api"
	"github.com/charlesng35/entrybox/internal/app"
	"github.com/charlesng35/entrybox/internal/app/maintenance"
	"github.com/charlesng35/entrybox/internal/database"
	"github.com/charlesng35/entrybox/internal/middleware"
	"github.com/charlesng35/entrybox/pkg/logger"
)

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Stats     *maintenance.StatsCollector
	RateStore *middleware.MemoryRateStore
	Router    *gin.Engine
}

// bootstrapRuntime opens the pool, creates the served schema, starts the
// stats collector and builds the router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	tables := api.ServedTables(cfg)

	stack.DB, err = openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(stack.DB, tables...); err != nil {
		return nil, err
	}

	if cfg.Maintenance.Enabled {
		stack.Stats = maintenance.NewStatsCollector(stack.DB, tables,
			maintenance.WithSchedule(cfg.Maintenance.StatsSchedule),
		)
		if err := stack.Stats.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.RateStore = middleware.NewMemoryRateStore()

	stack.Router, err = api.NewRouter(stack.DB, cfg, stack.RateStore)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown stops background jobs and releases the pool.
func (s *runtimeStack) Shutdown(log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Stats != nil {
		<-s.Stats.Stop().Done()
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func loadApplicationConfig(path string) (*app.Config, error) {
	if strings.TrimSpace(path) == "" {
		return app.LoadConfig()
	}

	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return app.LoadConfig(path)
	case err == nil:
		return app.LoadConfig(filepath.Dir(path))
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config path %q does not exist", path)
	default:
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func openDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg, err := convertDatabaseConfig(cfg)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger.WithModule("database").Info("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

// convertDatabaseConfig prefers database.url (or DATABASE_URL) and falls back
// to the per-driver sections.
func convertDatabaseConfig(cfg *app.Config) (database.Config, error) {
	var dbCfg database.Config

	if raw := strings.TrimSpace(cfg.Database.URL); raw != "" {
		parsed, err := database.ParseURL(raw)
		if err != nil {
			return database.Config{}, err
		}
		dbCfg = parsed
	} else {
		dbCfg = database.Config{
			Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
			Path:   strings.TrimSpace(cfg.Database.Path),
			DSN:    strings.TrimSpace(cfg.Database.DSN),
		}

		var section app.DBAuthConfig
		switch dbCfg.Driver {
		case "", database.DriverSQLite:
			dbCfg.Driver = database.DriverSQLite
		case database.DriverSQLitePure:
		case database.DriverPostgres, "postgresql":
			dbCfg.Driver = database.DriverPostgres
			section = cfg.Database.Postgres
		case database.DriverMySQL:
			section = cfg.Database.MySQL
		default:
			// Leave driver as-is to surface unsupported driver error during open.
		}

		dbCfg.Host = strings.TrimSpace(section.Host)
		dbCfg.Port = section.Port
		dbCfg.Name = strings.TrimSpace(section.Database)
		dbCfg.User = strings.TrimSpace(section.Username)
		dbCfg.Password = section.Password
	}

	dbCfg.LogLevel = cfg.Database.LogLevel
	dbCfg.MaxOpenConns = cfg.Database.MaxOpenConns
	dbCfg.MaxIdleConns = cfg.Database.MaxIdleConns
	dbCfg.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
	return dbCfg, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
