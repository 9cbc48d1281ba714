package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/quiz-solver/internal/repository"
)

const chainGuardPrefix = "quiz:chain:"

// ChainGuardImpl implements repository.ChainGuard with expiring Redis keys.
type ChainGuardImpl struct {
	client *redis.Client
}

var _ repository.ChainGuard = (*ChainGuardImpl)(nil)

// NewChainGuard creates a new instance of ChainGuardImpl.
func NewChainGuard(client *redis.Client) *ChainGuardImpl {
	return &ChainGuardImpl{client: client}
}

func (g *ChainGuardImpl) generateKey(key string) string {
	return chainGuardPrefix + key
}

// Acquire sets the key only if it is absent. The TTL frees keys left behind
// by a crashed process.
func (g *ChainGuardImpl) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return g.client.SetNX(ctx, g.generateKey(key), time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// Release deletes the key.
func (g *ChainGuardImpl) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.generateKey(key)).Err()
}
