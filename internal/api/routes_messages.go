package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/charlesng35/entrybox/internal/app"
	"github.com/charlesng35/entrybox/internal/handlers"
	"github.com/charlesng35/entrybox/internal/middleware"
	"github.com/charlesng35/entrybox/internal/services"
	"github.com/charlesng35/entrybox/pkg/logger"
)

// registerMessageRoutes exposes POST under every policy. Listing and bulk
// deletion exist only behind the shared secret.
func registerMessageRoutes(r *gin.Engine, db *gorm.DB, cfg *app.Config) error {
	svc, err := services.NewMessageService(db,
		services.WithMaxContentBytes(cfg.Limits.MaxContentBytes),
	)
	if err != nil {
		return err
	}
	handler := handlers.NewMessageHandler(svc)

	messages := r.Group("/messages")
	if !cfg.Auth.SharedSecretRequired() {
		messages.POST("", handler.Create)
		return nil
	}

	if cfg.Auth.SharedSecret == app.DefaultSharedSecret {
		logger.WithModule("api").Warn("messages are protected by the built-in default shared secret; set auth.shared_secret")
	}

	messages.Use(middleware.APIKey(cfg.Auth.Header, cfg.Auth.SharedSecret))
	{
		messages.POST("", handler.Create)
		messages.GET("", handler.List)
		messages.DELETE("", handler.DeleteAll)
	}
	return nil
}
