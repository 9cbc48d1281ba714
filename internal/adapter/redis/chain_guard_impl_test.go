package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server when TEST_REDIS_ADDR is set.
func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestChainGuardAcquireRelease(t *testing.T) {
	ctx := context.Background()
	guard := NewChainGuard(newTestClient(t))
	key := "test-" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = guard.Release(ctx, key) })

	ok, err := guard.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = guard.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire must fail while the key is held")

	require.NoError(t, guard.Release(ctx, key))

	ok, err = guard.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChainGuardKeyExpires(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	guard := NewChainGuard(client)
	key := "ttl-" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = guard.Release(ctx, key) })

	ok, err := guard.Acquire(ctx, key, 2*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	ttl, err := client.TTL(ctx, guard.generateKey(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 2*time.Second)
}
