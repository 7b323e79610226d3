package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"basegraph.app/assist/common/logger"
	"basegraph.app/assist/internal/assistant"
	"basegraph.app/assist/internal/http/dto"
	"basegraph.app/assist/internal/service"
)

// SourceHeader tells clients whether the body came from the model or a fallback.
const SourceHeader = "X-Assistant-Source"

type AssistantHandler struct {
	assistantService service.AssistantService
	traceHeaderName  string
}

func NewAssistantHandler(assistantService service.AssistantService, traceHeaderName string) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		traceHeaderName:  traceHeaderName,
	}
}

func (h *AssistantHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(ctx, "failed to decode assistant request", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// The feature decides the response before input or context are looked at.
	feature, err := assistant.ParseFeature(req.FeatureName())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown feature"})
		return
	}

	reqCtx, err := req.DecodeContext()
	if err == nil && reqCtx != nil {
		err = binding.Validator.ValidateStruct(reqCtx)
	}
	if err != nil {
		slog.WarnContext(ctx, "invalid assistant context", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var traceID string
	if h.traceHeaderName != "" {
		traceID = c.GetHeader(h.traceHeaderName)
	}
	sc := logger.StartSpanFromTraceID(ctx, traceID, "assistant.request")
	defer sc.End()
	ctx = sc.Context()

	result, err := h.assistantService.Run(ctx, assistant.Request{
		Feature: feature,
		Input:   req.InputText(),
		Context: reqCtx.ToRequestContext(),
	})
	if err != nil {
		if errors.Is(err, assistant.ErrUnknownFeature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown feature"})
			return
		}
		sc.RecordError(err)
		slog.ErrorContext(ctx, "assistant request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Header(SourceHeader, string(result.Source))
	c.JSON(http.StatusOK, result.Payload)
}

func (h *AssistantHandler) Features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"features": h.assistantService.Features()})
}

func (h *AssistantHandler) ListInvocations(c *gin.Context) {
	ctx := c.Request.Context()

	var limit int32
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = int32(parsed)
	}

	invocations, err := h.assistantService.ListInvocations(ctx, c.Query("feature"), limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHistoryDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Invocation history disabled"})
		case errors.Is(err, assistant.ErrUnknownFeature):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown feature"})
		default:
			slog.ErrorContext(ctx, "failed to list invocations", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"invocations": dto.ToInvocationResponses(invocations)})
}

func (h *AssistantHandler) GetInvocation(c *gin.Context) {
	ctx := c.Request.Context()

	invocationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invocation id"})
		return
	}

	inv, err := h.assistantService.GetInvocation(ctx, invocationID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrHistoryDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Invocation history disabled"})
		case errors.Is(err, service.ErrInvocationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Invocation not found"})
		default:
			slog.ErrorContext(ctx, "failed to get invocation", "error", err, "invocation_id", invocationID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToInvocationResponse(*inv))
}
