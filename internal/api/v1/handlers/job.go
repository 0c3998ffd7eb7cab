package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videochat/internal/api/errors"
	"videochat/internal/api/middleware"
	"videochat/internal/api/v1/services"
)

// JobHandler handles pipeline job endpoints.
type JobHandler struct {
	service services.JobService
}

// NewJobHandler creates a new job handler.
func NewJobHandler(service services.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// Get handles GET /api/v1/jobs/:id
func (h *JobHandler) Get(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		middleware.HandleError(c, errors.NewBadRequestError("Missing job ID"))
		return
	}

	response, err := h.service.Get(c.Request.Context(), jobID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
