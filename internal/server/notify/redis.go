package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophjournal/internal/journal"
	"github.com/redis/go-redis/v9"
)

// One channel per owner, named after the collection the changes touch.
const channelPrefix = journal.Collection + ":"

// Channel is the pub/sub channel carrying ownerID's change signals.
func Channel(ownerID string) string {
	return channelPrefix + ownerID
}

// Redis is a Notifier shared by every server instance using the same Redis.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// NewRedisClient connects to redisURL and pings it.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}
	return client, nil
}

func (r *Redis) Publish(ctx context.Context, ownerID string) error {
	if err := r.client.Publish(ctx, Channel(ownerID), "changed").Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, ownerID string) (<-chan struct{}, func(), error) {
	ps := r.client.Subscribe(ctx, Channel(ownerID))
	// Wait for the confirmation so no publish after return is missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("redis subscribe: %w", err)
	}

	out := make(chan struct{}, 1)
	msgs := ps.Channel()
	go func() {
		for range msgs {
			signal(out)
		}
	}()

	return out, func() { _ = ps.Close() }, nil
}
