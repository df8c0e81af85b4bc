package cache

import (
	"context"
	"fmt"
	"time"

	"social-calendar/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache creates a Redis client. Redis is optional infrastructure; a nil
// client disables caching without affecting the publish path.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// IAccountMetadataCache caches provider profile metadata per social account
// with its own TTL, so account listings don't hit the provider on every read.
type IAccountMetadataCache interface {
	Get(ctx context.Context, accountID int64) ([]byte, error)
	Set(ctx context.Context, accountID int64, metadata []byte, ttl time.Duration)
}

type AccountMetadataCache struct {
	client *redis.Client
}

func NewAccountMetadataCache(client *redis.Client) IAccountMetadataCache {
	return &AccountMetadataCache{client: client}
}

func metadataKey(accountID int64) string {
	return fmt.Sprintf("social_account:%d:metadata", accountID)
}

func (c *AccountMetadataCache) Get(ctx context.Context, accountID int64) ([]byte, error) {
	if c.client == nil {
		return nil, nil
	}
	val, err := c.client.Get(ctx, metadataKey(accountID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *AccountMetadataCache) Set(ctx context.Context, accountID int64, metadata []byte, ttl time.Duration) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, metadataKey(accountID), metadata, ttl).Err(); err != nil {
		logger.GetLogger().WithField("error", err).WithField("account_id", accountID).Warn("failed caching account metadata")
	}
}
