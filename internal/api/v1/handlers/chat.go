package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videochat/internal/api/middleware"
	"videochat/internal/api/v1/dto"
	"videochat/internal/api/v1/services"
)

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	service services.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(service services.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Ask handles POST /api/v1/videos/:id/chat
func (h *ChatHandler) Ask(c *gin.Context) {
	id, ok := videoID(c)
	if !ok {
		return
	}

	var req dto.ChatRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Ask(c.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// History handles GET /api/v1/videos/:id/chat-history
func (h *ChatHandler) History(c *gin.Context) {
	id, ok := videoID(c)
	if !ok {
		return
	}

	response, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
