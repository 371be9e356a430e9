package api

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/app"
	"github.com/charlesng35/entrybox/internal/handlers"
	"github.com/charlesng35/entrybox/internal/monitoring"
	"github.com/charlesng35/entrybox/internal/monitoring/checks"
)

var healthPaths = []string{"/health", "/health/live", "/health/ready"}

func registerHealthRoutes(r *gin.Engine, db *gorm.DB, cfg *app.Config) {
	if !cfg.Monitoring.Health.Enabled {
		return
	}

	manager := monitoring.NewHealthManager(cfg.Monitoring.Health.Timeout)
	manager.RegisterReadiness(checks.Database(db))
	manager.RegisterReadiness(checks.Schema(db, ServedTables(cfg)))

	handler := handlers.NewHealthHandler(manager)
	r.GET("/health", handler.Overall)
	r.GET("/health/live", handler.Liveness)
	r.GET("/health/ready", handler.Readiness)
}

func registerMetricsRoute(r *gin.Engine, cfg *app.Config) {
	if !cfg.Monitoring.Prometheus.Enabled {
		return
	}
	r.GET(metricsEndpoint(cfg), gin.WrapH(promhttp.Handler()))
}

func metricsEndpoint(cfg *app.Config) string {
	endpoint := strings.TrimSpace(cfg.Monitoring.Prometheus.Endpoint)
	if endpoint == "" {
		return "/metrics"
	}
	return endpoint
}

// quietPaths are probe and scrape endpoints excluded from the access log.
func quietPaths(cfg *app.Config) []string {
	paths := append([]string(nil), healthPaths...)
	if cfg.Monitoring.Prometheus.Enabled {
		paths = append(paths, metricsEndpoint(cfg))
	}
	return paths
}
