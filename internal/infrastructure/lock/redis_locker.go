package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payhook/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 10 * time.Second
	defaultLockRetry = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises creation across instances with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
	logger *zap.Logger
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

var _ interfaces.ILocker = (*RedisLocker)(nil)

func NewRedisLocker(client redis.UniversalClient, logger *zap.Logger, prefix string, ttl time.Duration) *RedisLocker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLocker{client: client, logger: logger, prefix: prefix, ttl: ttl, retry: defaultLockRetry}
}

func (l *RedisLocker) lockKey(key string) string {
	return fmt.Sprintf("%slock:%s", l.prefix, key)
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := l.lockKey(key)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			l.logger.Error("[lock][redis] acquire failed", zap.String("key", k), zap.Error(err))
			return nil, fmt.Errorf("acquire lock %s: %w", k, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return func() {
		// the request context may already be cancelled; release with a short budget of our own
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{k}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("[lock][redis] release failed", zap.String("key", k), zap.Error(err))
		}
	}, nil
}
