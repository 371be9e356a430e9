package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/app"
	"github.com/charlesng35/entrybox/internal/database"
	"github.com/charlesng35/entrybox/internal/middleware"
)

// NewRouter builds the Gin engine, wires middleware and registers the
// endpoint sets selected by cfg.Service.Mode. A nil store falls back to
// process-local rate limiting.
func NewRouter(db *gorm.DB, cfg *app.Config, store middleware.RateStore) (*gin.Engine, error) {
	if db == nil {
		return nil, errors.New("database handle must be provided")
	}
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}
	if store == nil {
		store = middleware.NewMemoryRateStore()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger(quietPaths(cfg)...))
	if cfg.Monitoring.Prometheus.Enabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))
	r.Use(middleware.RateLimit(store, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))

	registerHealthRoutes(r, db, cfg)
	registerMetricsRoute(r, cfg)

	if cfg.Service.EntriesEnabled() {
		if err := registerEntryRoutes(r, db, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Service.MessagesEnabled() {
		if err := registerMessageRoutes(r, db, cfg); err != nil {
			return nil, err
		}
	}

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

// ServedTables lists the tables backing the endpoint sets cfg enables.
func ServedTables(cfg *app.Config) []database.Table {
	if cfg == nil {
		return nil
	}
	var tables []database.Table
	if cfg.Service.EntriesEnabled() {
		tables = append(tables, database.TableEntries)
	}
	if cfg.Service.MessagesEnabled() {
		tables = append(tables, database.TableMessages)
	}
	return tables
}
