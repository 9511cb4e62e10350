package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container. Skipped in short mode.
func setupRedis(t *testing.T) (*RedisCache, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rc, err := NewRedisCache(ctx, WithRedisAddr(fmt.Sprintf("%s:%s", host, port.Port())), WithRedisPrefix("test"), WithRedisPool(4, 1))
	require.NoError(t, err)

	return rc, func() {
		_ = rc.Close()
		_ = container.Terminate(ctx)
	}
}

func TestRedisCache_RoundTrip(t *testing.T) {
	rc, cleanup := setupRedis(t)
	defer cleanup()
	ctx := context.Background()

	_, err := rc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, rc.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	raw, err := rc.client.Get(ctx, "test:k").Result()
	require.NoError(t, err)
	assert.Equal(t, "v", raw)

	require.NoError(t, rc.Delete(ctx, "k"))
	_, err = rc.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
