package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/entrybox/internal/services"
	appErrors "github.com/charlesng35/entrybox/pkg/errors"
	"github.com/charlesng35/entrybox/pkg/response"
)

var errEntryNotFound = appErrors.NewNotFound("Entry not found")

// EntryHandler serves the key/value endpoints.
type EntryHandler struct {
	svc *services.EntryService
}

func NewEntryHandler(svc *services.EntryService) *EntryHandler {
	return &EntryHandler{svc: svc}
}

// putEntryRequest accepts an optional key for compatibility with older
// clients. The path segment is authoritative.
type putEntryRequest struct {
	Key   string  `json:"key"`
	Value *string `json:"value" validate:"required"`
}

type entryDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type putEntryResponse struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

// Put handles PUT /entries/:key.
func (h *EntryHandler) Put(c *gin.Context) {
	var req putEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, _, err := h.svc.Put(c.Request.Context(), c.Param("key"), *req.Value)
	if err != nil {
		writeServiceError(c, err, nil)
		return
	}

	response.JSON(c, http.StatusOK, putEntryResponse{
		Key:    entry.Key,
		Value:  entry.Value,
		Status: "success",
	})
}

// Get handles GET /entries/:key.
func (h *EntryHandler) Get(c *gin.Context) {
	entry, err := h.svc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeServiceError(c, err, errEntryNotFound)
		return
	}

	response.JSON(c, http.StatusOK, entryDTO{Key: entry.Key, Value: entry.Value})
}
