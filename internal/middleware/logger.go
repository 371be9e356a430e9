package middleware

import (
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/entrybox/pkg/logger"
)

// Logger writes a structured access log for each request, skipping probe paths.
func Logger(skipPaths ...string) gin.HandlerFunc {
	return ginzap.GinzapWithConfig(logger.Logger().Named("http"), &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  skipPaths,
	})
}
