package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/entrybox/internal/services"
	appErrors "github.com/charlesng35/entrybox/pkg/errors"
	"github.com/charlesng35/entrybox/pkg/logger"
	"github.com/charlesng35/entrybox/pkg/response"
	appValidator "github.com/charlesng35/entrybox/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return false
		}
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
		return false
	}

	return true
}

// writeServiceError maps service failures onto API errors.
func writeServiceError(c *gin.Context, err error, notFound *appErrors.AppError) {
	var persistence *services.PersistenceError
	switch {
	case errors.Is(err, services.ErrValidation):
		response.Error(c, appErrors.NewBadRequest(formatValidationError(err)))
	case notFound != nil && errors.Is(err, services.ErrEntryNotFound):
		response.Error(c, notFound)
	case errors.As(err, &persistence):
		logger.WithModule("handlers").Error("persistence failure",
			zap.String("op", persistence.Op),
			zap.String("path", c.FullPath()),
			zap.Error(persistence.Err),
		)
		response.Error(c, appErrors.Persistence(persistence.Err))
	default:
		response.Error(c, err)
	}
}

func formatValidationError(err error) string {
	var ve appValidator.ValidationErrors
	if err == nil || !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request payload"
	}

	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		field := prettifyFieldName(failure.Field)
		switch failure.Tag {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "maxbytes":
			messages = append(messages, fmt.Sprintf("%s must be at most %s bytes", field, failure.Param))
		default:
			if failure.Param != "" {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", field, failure.Tag))
			}
		}
	}
	return strings.Join(messages, "; ")
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(name)
}
