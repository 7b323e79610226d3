package queue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// InvocationEvent announces a finished assistant request to the activity feed.
type InvocationEvent struct {
	InvocationID int64
	Feature      string
	Source       string
	LatencyMs    int64
	TraceID      *string
}

type Producer interface {
	Publish(ctx context.Context, event InvocationEvent) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewRedisProducer appends events to a capped Redis stream. maxLen <= 0 leaves the stream uncapped.
func NewRedisProducer(client *redis.Client, stream string, maxLen int64, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, event InvocationEvent) error {
	fields := map[string]any{
		"invocation_id": event.InvocationID,
		"feature":       event.Feature,
		"source":        event.Source,
		"latency_ms":    event.LatencyMs,
	}

	if event.TraceID != nil && *event.TraceID != "" {
		fields["trace_id"] = *event.TraceID
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("publish invocation event: %w", err)
	}

	p.logger.DebugContext(ctx, "published invocation event",
		"invocation_id", event.InvocationID,
		"feature", event.Feature,
		"source", event.Source)
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}
