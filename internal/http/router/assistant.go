package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/assist/internal/http/handler"
)

func AssistantRouter(rg *gin.RouterGroup, h *handler.AssistantHandler, stream *handler.InvocationStreamHandler) {
	rg.POST("", h.Run)
	rg.GET("/features", h.Features)
	rg.GET("/invocations", h.ListInvocations)
	rg.GET("/invocations/stream", stream.Stream)
	rg.GET("/invocations/:id", h.GetInvocation)
}
