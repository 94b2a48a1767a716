package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"devconnector/internal/logging"
)

// Publisher defines the interface for publishing events to a stream.
type Publisher interface {
	// Publish adds an event to the specified stream.
	// Returns the message ID assigned by Redis.
	Publish(ctx context.Context, stream string, event AccountEvent) (messageID string, err error)
}

// RedisPublisher implements Publisher using Redis Streams.
type RedisPublisher struct {
	client redis.UniversalClient
	log    zerolog.Logger
}

// NewPublisher creates a new Publisher backed by Redis Streams.
func NewPublisher(client redis.UniversalClient) Publisher {
	return &RedisPublisher{client: client, log: logging.For("publisher")}
}

// Publish adds an event to the stream using XADD with an auto-generated ID.
func (p *RedisPublisher) Publish(ctx context.Context, stream string, event AccountEvent) (string, error) {
	startTime := time.Now()

	values, err := event.ToMap()
	if err != nil {
		return "", fmt.Errorf("serialize event: %w", err)
	}

	messageID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Result()
	if err != nil {
		p.log.Error().Err(err).Str("stream", stream).Str("type", event.Type).Msg("publish failed")
		return "", fmt.Errorf("xadd to stream: %w", err)
	}

	p.log.Debug().
		Str("stream", stream).
		Str("type", event.Type).
		Str("msg_id", messageID).
		Str(logging.UserID, event.UserID).
		Dur("duration", time.Since(startTime)).
		Msg("published")

	return messageID, nil
}

// PublishAccountDeleted is a convenience method for account deletion events.
func (p *RedisPublisher) PublishAccountDeleted(ctx context.Context, userID string, hasAvatar bool) (string, error) {
	return p.Publish(ctx, StreamAccount, NewAccountDeletedEvent(userID, hasAvatar))
}
