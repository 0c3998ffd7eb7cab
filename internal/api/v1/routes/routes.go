package routes

import (
	"github.com/gin-gonic/gin"

	"videochat/internal/api/v1/handlers"
	"videochat/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	VideoService   services.VideoService
	ChatService    services.ChatService
	JobService     services.JobService
	StatusStreamer services.StatusStreamer
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	videoHandler := handlers.NewVideoHandler(container.VideoService, container.StatusStreamer)
	chatHandler := handlers.NewChatHandler(container.ChatService)

	videos := router.Group("/videos")
	{
		videos.POST("/upload", videoHandler.Upload)
		videos.GET("", videoHandler.List)
		videos.GET("/:id", videoHandler.Get)
		videos.DELETE("/:id", videoHandler.Delete)
		videos.GET("/:id/status", videoHandler.Status)
		videos.GET("/:id/status/stream", videoHandler.StatusStream)
		videos.GET("/:id/translations", videoHandler.Translations)
		videos.POST("/:id/chat", chatHandler.Ask)
		videos.GET("/:id/chat-history", chatHandler.History)
	}

	jobHandler := handlers.NewJobHandler(container.JobService)
	router.GET("/jobs/:id", jobHandler.Get)
}
