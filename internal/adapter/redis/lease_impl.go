package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const leasePrefix = "siloq:lease:"

// releaseScript deletes the lease only if it is still held by the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry forward only while the caller's token holds the lease.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// LeaseRepoImpl provides named, expiring leases on top of SET NX.
type LeaseRepoImpl struct {
	client *redis.Client
}

// NewLeaseRepo creates a new instance of LeaseRepoImpl.
func NewLeaseRepo(client *redis.Client) *LeaseRepoImpl {
	return &LeaseRepoImpl{client: client}
}

// Acquire takes the lease if nobody holds it.
func (r *LeaseRepoImpl) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, leasePrefix+name, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lease if token still owns it. An expired lease is not an error.
func (r *LeaseRepoImpl) Release(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, r.client, []string{leasePrefix + name}, token).Err()
}

// Extend renews the lease for ttl. It returns false when token no longer owns it.
func (r *LeaseRepoImpl) Extend(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, r.client, []string{leasePrefix + name}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
