package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Siloq-app/siloq-wordpress-sub001/pkg/utils"
)

const siteIDPrefix = "siloq:site_id:"

// SiteIDCacheImpl provides a concrete implementation for the SiteIDCache interface using Redis.
type SiteIDCacheImpl struct {
	client *redis.Client
}

// NewSiteIDCache creates a new instance of SiteIDCacheImpl.
func NewSiteIDCache(client *redis.Client) *SiteIDCacheImpl {
	return &SiteIDCacheImpl{client: client}
}

// generateKey hashes the account key so keys stay short and safe.
func (c *SiteIDCacheImpl) generateKey(account string) string {
	return fmt.Sprintf("%s%s", siteIDPrefix, utils.HashContent(account))
}

// Get returns the cached site id, or "" when the key is absent or expired.
func (c *SiteIDCacheImpl) Get(ctx context.Context, account string) (string, error) {
	val, err := c.client.Get(ctx, c.generateKey(account)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

// Set caches a site id with an expiry so account remappings are picked up.
func (c *SiteIDCacheImpl) Set(ctx context.Context, account, siteID string, ttl time.Duration) error {
	return c.client.Set(ctx, c.generateKey(account), siteID, ttl).Err()
}
