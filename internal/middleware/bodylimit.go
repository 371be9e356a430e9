package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/entrybox/pkg/errors"
	"github.com/charlesng35/entrybox/pkg/response"
)

// BodyLimit caps request bodies at limit bytes. Declared oversize bodies are
// rejected up front; streamed ones fail when the handler reads past the limit.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			response.Abort(c, appErrors.ErrPayloadTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
