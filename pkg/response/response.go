package response

import (
	"net/http"

	appErrors "github.com/charlesng35/entrybox/pkg/errors"
	"github.com/gin-gonic/gin"
)

// ErrorBody is the error payload sent to clients.
type ErrorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// JSON writes data as the response body without an envelope.
func JSON(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

// Detail writes a bare {"detail": ...} payload, used for informational results.
func Detail(c *gin.Context, statusCode int, detail string, extra gin.H) {
	body := gin.H{"detail": detail}
	for key, value := range extra {
		body[key] = value
	}
	c.JSON(statusCode, body)
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorBody{
		Detail: appErr.Message,
		Code:   appErr.Code,
	})
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
