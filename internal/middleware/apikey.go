package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/charlesng35/entrybox/pkg/errors"
	"github.com/charlesng35/entrybox/pkg/logger"
	"github.com/charlesng35/entrybox/pkg/response"
)

// DefaultAPIKeyHeader is checked when no header name is configured.
const DefaultAPIKeyHeader = "x-api-key"

// APIKey rejects any request whose header value is not exactly secret.
// Rejected requests never reach the handler.
func APIKey(header, secret string) gin.HandlerFunc {
	header = strings.TrimSpace(header)
	if header == "" {
		header = DefaultAPIKeyHeader
	}
	expected := []byte(secret)

	return func(c *gin.Context) {
		provided := c.GetHeader(header)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			logger.WithModule("auth").Debug("api key rejected",
				zap.String("path", c.Request.URL.Path),
				zap.Bool("present", provided != ""),
				zap.String("client_ip", c.ClientIP()),
			)
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
