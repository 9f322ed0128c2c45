package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans events out to a Redis pub/sub channel after the wrapped
// dispatcher has handled them locally.
type RedisPublisher struct {
	next    Dispatcher
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher wraps next. A nil client disables the Redis fan-out.
func NewRedisPublisher(next Dispatcher, client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{next: next, client: client, channel: channel}
}

// Publish dispatches locally, then publishes the JSON encoded event.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	if p.next != nil {
		if err := p.next.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if p.client != nil && p.channel != "" {
		body, err := json.Marshal(event)
		if err != nil {
			errs = append(errs, fmt.Errorf("encode event %s: %w", event.ID, err))
		} else if err := p.client.Publish(ctx, p.channel, body).Err(); err != nil {
			errs = append(errs, fmt.Errorf("publish event %s: %w", event.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers handler on the wrapped dispatcher.
func (p *RedisPublisher) Subscribe(eventType EventType, handler EventHandler) {
	if p.next != nil {
		p.next.Subscribe(eventType, handler)
	}
}
