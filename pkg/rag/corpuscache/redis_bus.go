package corpuscache

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const invalidationChannel = "corpus.invalidate"

// InvalidationBus fans invalidation events out to every running instance
// so no replica serves a stale corpus after a paper change.
type InvalidationBus interface {
	Publish(ctx context.Context, organizationId uuid.UUID) error
	Subscribe(handler func(organizationId uuid.UUID))
}

// RedisInvalidationBus broadcasts invalidations over a redis pub/sub
// channel. Messages carry the organization id as plain text.
type RedisInvalidationBus struct {
	client *redis.Client
	logger *log.Logger
}

var _ InvalidationBus = &RedisInvalidationBus{}

func NewRedisInvalidationBus(redisURL string, logger *log.Logger) (*RedisInvalidationBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisInvalidationBus{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

func (b *RedisInvalidationBus) Publish(ctx context.Context, organizationId uuid.UUID) error {
	return b.client.Publish(ctx, invalidationChannel, organizationId.String()).Err()
}

func (b *RedisInvalidationBus) Subscribe(handler func(organizationId uuid.UUID)) {
	pubsub := b.client.Subscribe(context.Background(), invalidationChannel)

	go func() {
		for msg := range pubsub.Channel() {
			organizationId, err := uuid.Parse(msg.Payload)
			if err != nil {
				b.logger.Printf("[CACHE] Ignoring malformed invalidation payload %q", msg.Payload)
				continue
			}
			handler(organizationId)
		}
	}()
}

func (b *RedisInvalidationBus) Close() error {
	return b.client.Close()
}
