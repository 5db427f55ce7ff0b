package cache

import (
	"context"
	"fmt"
	"time"

	"wotmaps-api/internal/region"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	noncePrefix     = "openid:nonce:"
	rateLimitPrefix = "rate_limit:"
)

// Cache handles Redis operations
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCache creates a new cache instance
func NewCache(ctx context.Context, redisURL string, logger *zap.Logger) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return New(client, logger), nil
}

// New wraps an existing client.
func New(client *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{
		client: client,
		logger: logger,
	}
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks that Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// MarkNonceUsed records the response nonce of a confirmed OpenID assertion.
// It reports true the first time a nonce is seen for a region and false for
// every replay within ttl.
func (c *Cache) MarkNonceUsed(ctx context.Context, r region.Region, nonce string, ttl time.Duration) (bool, error) {
	first, err := c.client.SetNX(ctx, nonceKey(r, nonce), "1", ttl).Result()
	if err != nil {
		c.logger.Error("Failed to record OpenID nonce", zap.String("region", string(r)), zap.Error(err))
		return false, err
	}
	return first, nil
}

// CheckRateLimit counts one request for key and reports whether the count
// within the current window exceeds limit.
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rkey := rateLimitPrefix + key
	count, err := c.client.Incr(ctx, rkey).Result()
	if err != nil {
		c.logger.Error("Failed to increment rate limit counter", zap.String("key", key), zap.Error(err))
		return false, err
	}

	// Set expiration on first request
	if count == 1 {
		if err := c.client.Expire(ctx, rkey, window).Err(); err != nil {
			c.logger.Error("Failed to set rate limit expiration", zap.Error(err))
		}
	}

	return count > int64(limit), nil
}

func nonceKey(r region.Region, nonce string) string {
	return noncePrefix + string(r) + ":" + nonce
}
