package repository

import (
	"context"
	"time"
)

// ChainGuard prevents the same chain from running twice at once.
type ChainGuard interface {
	// Acquire claims key for at most ttl. It returns false if the key is already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release gives the key back.
	Release(ctx context.Context, key string) error
}
