//go:build integration

package lock

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLocker_Exclusive(t *testing.T) {
	ctx := context.Background()
	locker := NewRedisLocker(newTestClient(t), 5*time.Second, time.Second, nil)
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	release, acquired, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = locker.Acquire(ctx, key)
	require.NoError(t, err)
	assert.False(t, acquired)

	release()

	release, acquired, err = locker.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, acquired)
	release()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	locker := NewRedisLocker(client, 200*time.Millisecond, time.Second, nil)
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	release, acquired, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	require.True(t, acquired)

	// 锁过期后被其他持有者获取
	time.Sleep(300 * time.Millisecond)
	other, acquired, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	require.True(t, acquired)

	release()

	exists, err := client.Exists(ctx, "lock_"+key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
	other()
}

func TestRedisLocker_ReleaseFailureLogged(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	locker := NewRedisLocker(client, 5*time.Second, time.Second, logger)
	key := "test:" + time.Now().Format(time.RFC3339Nano)

	release, acquired, err := locker.Acquire(ctx, key)
	require.NoError(t, err)
	require.True(t, acquired)

	// 连接关闭后释放必然失败，失败信息写入注入的 logger
	require.NoError(t, client.Close())
	release()

	assert.Contains(t, buf.String(), "释放锁失败")
	assert.Contains(t, buf.String(), "lock_"+key)
}
