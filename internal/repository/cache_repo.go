package repository

import (
	"context"
	"time"
)

// SiteIDCache keeps a resolved site id for a bounded duration.
type SiteIDCache interface {
	// Get returns the cached site id for an account key, or "" when absent.
	Get(ctx context.Context, account string) (string, error)
	Set(ctx context.Context, account, siteID string, ttl time.Duration) error
}

// LeaseRepository serializes site-wide operations across callers.
type LeaseRepository interface {
	// Acquire takes the named lease for ttl. It returns the lease token and false when already held.
	Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	// Extend renews a held lease for ttl. It returns false when token no longer owns it.
	Extend(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	// Release frees the lease if it is still held with token.
	Release(ctx context.Context, name, token string) error
}
