package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// 只有持有者本人才能释放锁，避免锁过期后误删他人的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client    *redis.Client
	prefix    string
	ttl       time.Duration
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewRedisLocker ttl 是锁的最长持有时间，opTimeout 限制每次 redis 调用的耗时
func NewRedisLocker(client *redis.Client, ttl, opTimeout time.Duration, logger *slog.Logger) *RedisLocker {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocker{
		client:    client,
		prefix:    "lock_",
		ttl:       ttl,
		opTimeout: opTimeout,
		logger:    logger,
	}
}

// Acquire 尝试获取锁，锁已被占用时 acquired 为 false
func (l *RedisLocker) Acquire(ctx context.Context, key string) (release func(), acquired bool, err error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}

	redisKey := l.prefix + key
	setCtx, cancel := context.WithTimeout(ctx, l.opTimeout)
	defer cancel()

	ok, err := l.client.SetNX(setCtx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		// 请求的 ctx 可能已经取消，释放时使用独立的超时
		ctx, cancel := context.WithTimeout(context.Background(), l.opTimeout)
		defer cancel()

		if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
			l.logger.Warn("释放锁失败", slog.String("key", redisKey), slog.String("error", err.Error()))
		}
	}

	return release, true, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
