package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"basegraph.app/assist/common/id"
	"basegraph.app/assist/common/logger"
	"basegraph.app/assist/internal/assistant"
	"basegraph.app/assist/internal/model"
	"basegraph.app/assist/internal/queue"
	"basegraph.app/assist/internal/store"
)

var (
	// ErrHistoryDisabled is returned by history queries when no database is configured.
	ErrHistoryDisabled    = errors.New("invocation history disabled")
	ErrInvocationNotFound = errors.New("invocation not found")
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type AssistantService interface {
	Run(ctx context.Context, req assistant.Request) (*assistant.Result, error)
	Features() []assistant.FeatureInfo
	ListInvocations(ctx context.Context, feature string, limit int32) ([]model.Invocation, error)
	GetInvocation(ctx context.Context, invocationID int64) (*model.Invocation, error)
}

// Dispatcher is implemented by *assistant.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, req assistant.Request) (*assistant.Result, error)
}

type assistantService struct {
	dispatcher  Dispatcher
	invocations store.InvocationStore // nil when history is disabled
	events      queue.Producer        // nil when the activity stream is disabled
}

func NewAssistantService(dispatcher Dispatcher, invocations store.InvocationStore, events queue.Producer) AssistantService {
	return &assistantService{
		dispatcher:  dispatcher,
		invocations: invocations,
		events:      events,
	}
}

func (s *assistantService) Run(ctx context.Context, req assistant.Request) (*assistant.Result, error) {
	result, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		if errors.Is(err, assistant.ErrUnknownFeature) {
			slog.InfoContext(ctx, "unknown assistant feature requested", "feature", req.Feature)
			return nil, err
		}
		return nil, fmt.Errorf("dispatching assistant request: %w", err)
	}

	s.record(ctx, req, result)
	return result, nil
}

func (s *assistantService) Features() []assistant.FeatureInfo {
	return assistant.Catalog()
}

func (s *assistantService) ListInvocations(ctx context.Context, feature string, limit int32) ([]model.Invocation, error) {
	if s.invocations == nil {
		return nil, ErrHistoryDisabled
	}

	if feature != "" {
		if _, err := assistant.ParseFeature(feature); err != nil {
			return nil, err
		}
	}

	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	invocations, err := s.invocations.ListRecent(ctx, feature, limit)
	if err != nil {
		return nil, fmt.Errorf("listing invocations: %w", err)
	}
	return invocations, nil
}

func (s *assistantService) GetInvocation(ctx context.Context, invocationID int64) (*model.Invocation, error) {
	if s.invocations == nil {
		return nil, ErrHistoryDisabled
	}

	inv, err := s.invocations.GetByID(ctx, invocationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvocationNotFound
		}
		return nil, fmt.Errorf("getting invocation: %w", err)
	}
	return inv, nil
}

// record stores and announces the invocation. Failures here never fail the request.
func (s *assistantService) record(ctx context.Context, req assistant.Request, result *assistant.Result) {
	if s.invocations == nil && s.events == nil {
		return
	}
	if !id.Ready() {
		slog.WarnContext(ctx, "id generator not initialized, invocation not recorded")
		return
	}

	inv, err := toInvocation(req, result)
	if err != nil {
		slog.WarnContext(ctx, "failed to build invocation record", "error", err)
		return
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{InvocationID: logger.Ptr(inv.ID)})

	if s.invocations != nil {
		if err := s.invocations.Create(ctx, inv); err != nil {
			slog.WarnContext(ctx, "failed to store invocation", "error", err)
		}
	}

	if s.events != nil {
		event := queue.InvocationEvent{
			InvocationID: inv.ID,
			Feature:      inv.Feature,
			Source:       inv.Source,
			LatencyMs:    inv.LatencyMs,
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			event.TraceID = logger.Ptr(sc.TraceID().String())
		}
		if err := s.events.Publish(ctx, event); err != nil {
			slog.WarnContext(ctx, "failed to publish invocation event", "error", err)
		}
	}
}

func toInvocation(req assistant.Request, result *assistant.Result) (*model.Invocation, error) {
	output, err := json.Marshal(result.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	inv := &model.Invocation{
		ID:               id.New(),
		Feature:          string(result.Feature),
		Model:            result.Model,
		Source:           model.InvocationSourceLive,
		InputText:        req.Input,
		OutputJSON:       output,
		Attempts:         result.Attempts,
		LatencyMs:        result.Latency.Milliseconds(),
		PromptTokens:     result.PromptTokens,
		CompletionTokens: result.CompletionTokens,
	}
	if result.Source == assistant.SourceFallback {
		inv.Source = model.InvocationSourceFallback
		inv.FallbackReason = logger.Ptr(result.Reason)
	}
	return inv, nil
}
