package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"basegraph.app/assist/internal/http/handler"
	"basegraph.app/assist/internal/service"
)

type RouterConfig struct {
	TraceHeaderName string
	// Redis and EventStream back the activity feed; a nil client disables it.
	Redis       *redis.Client
	EventStream string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assistantHandler := handler.NewAssistantHandler(services.Assistant(), cfg.TraceHeaderName)
	streamHandler := handler.NewInvocationStreamHandler(cfg.Redis, cfg.EventStream)

	// Path used by the web app's assistant panel.
	router.POST("/api/ai/assistant", assistantHandler.Run)

	v1 := router.Group("/api/v1")
	{
		AssistantRouter(v1.Group("/assistant"), assistantHandler, streamHandler)
	}
}
