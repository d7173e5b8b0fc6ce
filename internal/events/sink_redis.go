package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultStream = "soulbound:events"

// RedisSink appends events to a redis stream. Lightweight alternative to
// kafka for deployments where indexers tail a single stream.
type RedisSink struct {
	client *redis.Client
	stream string
}

// NewRedisSink creates a redis-stream event sink.
func NewRedisSink(client *redis.Client, stream string) *RedisSink {
	if stream == "" {
		stream = defaultStream
	}
	return &RedisSink{client: client, stream: stream}
}

// Publish appends one event to the stream via XADD.
func (s *RedisSink) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"kind":  string(event.Kind),
			"event": payload,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd event: %w", err)
	}
	return nil
}
