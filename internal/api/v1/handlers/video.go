package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"videochat/internal/api/errors"
	"videochat/internal/api/middleware"
	"videochat/internal/api/v1/dto"
	"videochat/internal/api/v1/services"
)

// VideoHandler handles video lifecycle endpoints.
type VideoHandler struct {
	service  services.VideoService
	streamer services.StatusStreamer
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(service services.VideoService, streamer services.StatusStreamer) *VideoHandler {
	return &VideoHandler{service: service, streamer: streamer}
}

// Upload handles POST /api/v1/videos/upload
func (h *VideoHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("Missing file field in multipart form"))
		return
	}

	response, err := h.service.Upload(c.Request.Context(), file)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, response)
}

// Get handles GET /api/v1/videos/:id
func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := videoID(c)
	if !ok {
		return
	}

	response, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /api/v1/videos
func (h *VideoHandler) List(c *gin.Context) {
	response, err := h.service.List(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(response.Total))
	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /api/v1/videos/:id
func (h *VideoHandler) Delete(c *gin.Context) {
	id, ok := videoID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Status handles GET /api/v1/videos/:id/status
func (h *VideoHandler) Status(c *gin.Context) {
	id, ok := videoID(c)
	if !ok {
		return
	}

	response, err := h.service.Status(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Translations handles GET /api/v1/videos/:id/translations
func (h *VideoHandler) Translations(c *gin.Context) {
	id, ok := videoID(c)
	if !ok {
		return
	}

	response, err := h.service.Translations(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// StatusStream handles GET /api/v1/videos/:id/status/stream
// Emits status snapshots as server-sent events until the video reaches
// a terminal state or the watch ends.
func (h *VideoHandler) StatusStream(c *gin.Context) {
	id, ok := videoID(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	snapshots := h.streamer.Watch(c.Request.Context(), id)
	c.Stream(func(w io.Writer) bool {
		snapshot, open := <-snapshots
		if !open {
			return false
		}
		event := "status"
		if snapshot.Error != "" {
			event = "error"
		}
		c.SSEvent(event, dto.NewStatusResponse(snapshot))
		return true
	})
}

func videoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid video ID"))
		return 0, false
	}
	return id, true
}
