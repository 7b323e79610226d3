package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"basegraph.app/assist/common/llm"
	"basegraph.app/assist/common/logger"
)

// Source tells whether a result came from the model or from the fallback table.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Result is the uniform envelope returned for every dispatched request.
// Payload is one of AnalyzeOutput, PredictOutput, BottleneckReport or AssignOutput.
type Result struct {
	Feature          Feature
	Payload          any
	Source           Source
	Reason           string // why the fallback was used; empty for live results
	Model            string
	Attempts         int
	PromptTokens     int
	CompletionTokens int
	Latency          time.Duration
}

type featureHandler struct {
	prompt  func(Request) Prompt
	extract func(completion string, req Request) Extraction[any]
}

// handlers and fallbacks must cover the same features.
var handlers = map[Feature]featureHandler{
	FeatureAnalyze: {
		prompt:  func(r Request) Prompt { return BuildAnalyzePrompt(r.Input) },
		extract: extractAnalyze,
	},
	FeaturePredict: {
		prompt:  func(r Request) Prompt { return BuildPredictPrompt(r.taskData()) },
		extract: extractPredict,
	},
	FeatureBottleneck: {
		prompt:  func(r Request) Prompt { return BuildBottleneckPrompt(r.tasks()) },
		extract: extractBottleneck,
	},
	FeatureAssign: {
		prompt:  func(r Request) Prompt { return BuildAssignPrompt(r.Input, r.roster()) },
		extract: extractAssign,
	},
}

type Options struct {
	Timeout      time.Duration // per attempt; zero leaves it to the client
	MaxRetries   int
	RetryBackoff time.Duration
	MaxTokens    int
	Temperature  *float64
}

// Dispatcher is the single entry point of the assistant. It holds no mutable
// state and is safe for concurrent use.
type Dispatcher struct {
	client llm.TextClient
	opts   Options
}

func NewDispatcher(client llm.TextClient, opts Options) *Dispatcher {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Dispatcher{client: client, opts: opts}
}

// Dispatch builds the feature's prompt, calls the model and extracts the
// structured answer. Model and extraction failures are absorbed by the fallback
// table; the only error returned is ErrUnknownFeature.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Result, error) {
	h, ok := handlers[req.Feature]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, req.Feature)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Feature:   logger.Ptr(string(req.Feature)),
		Component: "assist.assistant.dispatcher",
	})
	sc := logger.StartSpan(ctx, "assistant.dispatch",
		trace.WithAttributes(attribute.String("assistant.feature", string(req.Feature))))
	defer sc.End()
	ctx = sc.Context()

	prompt := h.prompt(req)
	result := &Result{
		Feature: req.Feature,
		Model:   d.client.Model(),
	}

	start := time.Now()
	resp, attempts, err := d.invoke(ctx, prompt)
	result.Latency = time.Since(start)
	result.Attempts = attempts

	var extraction Extraction[any]
	if err != nil {
		sc.RecordError(err)
		extraction = Failed[any](fmt.Sprintf("invocation failed: %v", err))
	} else {
		result.PromptTokens = resp.PromptTokens
		result.CompletionTokens = resp.CompletionTokens
		extraction = h.extract(resp.Content, req)
		if !extraction.OK() {
			slog.DebugContext(ctx, "unparseable completion",
				"completion", logger.Truncate(resp.Content, 500))
		}
	}

	if extraction.OK() {
		result.Payload = extraction.Value
		result.Source = SourceLive
	} else {
		result.Payload = fallbacks[req.Feature](req)
		result.Source = SourceFallback
		result.Reason = extraction.Failure
		slog.WarnContext(ctx, "assistant using fallback result",
			"reason", extraction.Failure,
			"attempts", attempts)
	}

	sc.Span().SetAttributes(
		attribute.String("assistant.source", string(result.Source)),
		attribute.Int("assistant.attempts", attempts),
	)

	slog.InfoContext(ctx, "assistant request dispatched",
		"source", result.Source,
		"model", result.Model,
		"duration_ms", result.Latency.Milliseconds())

	return result, nil
}

// invoke calls the model, retrying retryable failures up to MaxRetries times.
func (d *Dispatcher) invoke(ctx context.Context, prompt Prompt) (*llm.TextResponse, int, error) {
	for attempt := 1; ; attempt++ {
		resp, err := d.generate(ctx, prompt)
		if err == nil {
			return resp, attempt, nil
		}

		if attempt > d.opts.MaxRetries || !llm.IsRetryable(ctx, err) {
			return nil, attempt, err
		}

		backoff := retryBackoff(d.opts.RetryBackoff, attempt)
		slog.WarnContext(ctx, "llm call failed, retrying",
			"attempt", attempt,
			"backoff_ms", backoff.Milliseconds(),
			"error", err)

		select {
		case <-ctx.Done():
			return nil, attempt, err
		case <-time.After(backoff):
		}
	}
}

// maxRetryBackoff caps the doubling so large retry counts cannot overflow.
const maxRetryBackoff = 30 * time.Second

// retryBackoff doubles base for every failed attempt after the first.
func retryBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	backoff := base
	for i := 1; i < attempt && backoff < maxRetryBackoff; i++ {
		backoff *= 2
	}
	return min(backoff, maxRetryBackoff)
}

func (d *Dispatcher) generate(ctx context.Context, prompt Prompt) (*llm.TextResponse, error) {
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	resp, err := d.client.Generate(ctx, llm.TextRequest{
		SystemPrompt: prompt.System,
		UserPrompt:   prompt.User,
		MaxTokens:    d.opts.MaxTokens,
		Temperature:  d.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("empty response from model")
	}
	return resp, nil
}

func extractAnalyze(completion string, _ Request) Extraction[any] {
	subtasks := ExtractArray[Subtask](completion)
	if !subtasks.OK() {
		return Failed[any](subtasks.Failure)
	}
	return Parsed[any](AnalyzeOutput{Subtasks: subtasks.Value})
}

func extractPredict(completion string, _ Request) Extraction[any] {
	hours := ExtractInt(completion)
	if !hours.OK() {
		return Failed[any](hours.Failure)
	}
	return Parsed[any](PredictOutput{Hours: clampHours(hours.Value)})
}

func extractBottleneck(completion string, _ Request) Extraction[any] {
	report := ExtractObject[BottleneckReport](completion)
	if !report.OK() {
		return Failed[any](report.Failure)
	}
	if report.Value.Bottlenecks == nil {
		report.Value.Bottlenecks = []Bottleneck{}
	}
	return Parsed[any](report.Value)
}

func extractAssign(completion string, req Request) Extraction[any] {
	name := ExtractName(completion)
	if !name.OK() {
		return Failed[any](name.Failure)
	}

	assignee, ok := matchRoster(name.Value, req.roster())
	if !ok {
		return Failed[any](fmt.Sprintf("assignee %q not in roster", logger.Truncate(name.Value, 80)))
	}
	return Parsed[any](AssignOutput{Assignee: assignee})
}
