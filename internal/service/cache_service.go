package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jvegav/EcoTrade/internal/events"
)

const emailExistsKeyPrefix = "ecotrade:email_exists:"

// EmailExistsCache caches the email availability check in Redis. User
// lifecycle events invalidate the cached answer. All methods degrade to the
// uncached path when Redis is unavailable.
type EmailExistsCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewEmailExistsCache creates the cache. A nil client disables caching.
func NewEmailExistsCache(client *redis.Client, logger *zap.Logger) *EmailExistsCache {
	return &EmailExistsCache{client: client, logger: logger, ttl: 10 * time.Minute}
}

// Get returns the cached answer and whether one was present.
func (c *EmailExistsCache) Get(ctx context.Context, email string) (bool, bool) {
	if c == nil || c.client == nil {
		return false, false
	}
	val, err := c.client.Get(ctx, emailExistsKeyPrefix+email).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		c.logger.Debug("email cache read failed", zap.Error(err))
		return false, false
	}
	return val == "1", true
}

// Set stores the answer for the configured TTL.
func (c *EmailExistsCache) Set(ctx context.Context, email string, exists bool) {
	if c == nil || c.client == nil {
		return
	}
	val := "0"
	if exists {
		val = "1"
	}
	if err := c.client.Set(ctx, emailExistsKeyPrefix+email, val, c.ttl).Err(); err != nil {
		c.logger.Debug("email cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached answer for one email.
func (c *EmailExistsCache) Invalidate(ctx context.Context, email string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, emailExistsKeyPrefix+email).Err(); err != nil {
		c.logger.Debug("email cache invalidation failed", zap.Error(err))
	}
}

// RegisterHandlers subscribes cache invalidation to user lifecycle events.
func (c *EmailExistsCache) RegisterHandlers(dispatcher events.Dispatcher) {
	if c == nil || dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, event events.Event) error {
		if payload, ok := event.Payload.(events.UserEventPayload); ok {
			c.Invalidate(ctx, payload.Email)
		}
		return nil
	}
	dispatcher.Subscribe(events.EventUserCreated, handler)
	dispatcher.Subscribe(events.EventUserDeleted, handler)
}
