package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/app"
	"github.com/charlesng35/entrybox/internal/handlers"
	"github.com/charlesng35/entrybox/internal/services"
)

func registerEntryRoutes(r *gin.Engine, db *gorm.DB, cfg *app.Config) error {
	svc, err := services.NewEntryService(db,
		services.WithEntryLimits(cfg.Limits.MaxKeyBytes, cfg.Limits.MaxValueBytes),
	)
	if err != nil {
		return err
	}
	handler := handlers.NewEntryHandler(svc)

	entries := r.Group("/entries")
	{
		entries.PUT("/:key", handler.Put)
		entries.GET("/:key", handler.Get)
	}
	return nil
}
