package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/entrybox/internal/models"
	"github.com/charlesng35/entrybox/internal/services"
	"github.com/charlesng35/entrybox/pkg/response"
)

// MessageHandler serves the message endpoints.
type MessageHandler struct {
	svc *services.MessageService
}

func NewMessageHandler(svc *services.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

type createMessageRequest struct {
	Content *string `json:"content" validate:"required"`
}

type messageDTO struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func mapMessage(message *models.Message) messageDTO {
	return messageDTO{
		ID:        message.ID,
		Content:   message.Content,
		Timestamp: message.Timestamp.UTC(),
	}
}

// Create handles POST /messages.
func (h *MessageHandler) Create(c *gin.Context) {
	var req createMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	message, err := h.svc.Create(c.Request.Context(), *req.Content)
	if err != nil {
		writeServiceError(c, err, nil)
		return
	}

	response.JSON(c, http.StatusOK, mapMessage(message))
}

// List handles GET /messages.
func (h *MessageHandler) List(c *gin.Context) {
	messages, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, nil)
		return
	}

	dtos := make([]messageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, mapMessage(&messages[i]))
	}
	response.JSON(c, http.StatusOK, dtos)
}

// DeleteAll handles DELETE /messages.
func (h *MessageHandler) DeleteAll(c *gin.Context) {
	deleted, err := h.svc.DeleteAll(c.Request.Context())
	if err != nil {
		writeServiceError(c, err, nil)
		return
	}

	response.Detail(c, http.StatusOK, fmt.Sprintf("Deleted %d messages", deleted), gin.H{"deleted": deleted})
}
