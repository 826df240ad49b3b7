package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/prasdika/fieldbooking/internal/core/domain"
)

// RedisPublisher fans events out over Redis Pub/Sub. Channels are
// addressed per user (user:<id>), per field (field:<id>), or globally
// (broadcast); delivery is at most once per connected subscriber.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, event domain.Event, scope domain.Scope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.client.Publish(ctx, scope.Channel(), payload).Err()
}
