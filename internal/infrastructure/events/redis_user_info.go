package events

import (
	"context"
	"fmt"

	"payhook/internal/domain/entities"
	"payhook/internal/usecase/interfaces"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type hashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisUserInfoProvider reads payer display data from the hash
// <prefix>user:<user_id> with fields name and phone. The owning service keeps
// the hash current; a missing hash yields an empty UserInfo.
type RedisUserInfoProvider struct {
	client hashReader
	prefix string
	logger *zap.Logger
}

var _ interfaces.IUserInfoProvider = (*RedisUserInfoProvider)(nil)

func NewRedisUserInfoProvider(client hashReader, prefix string, logger *zap.Logger) *RedisUserInfoProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisUserInfoProvider{client: client, prefix: prefix, logger: logger.Named("callbacks")}
}

func (p *RedisUserInfoProvider) GetUserInfo(ctx context.Context, userID string) (entities.UserInfo, error) {
	key := p.prefix + "user:" + userID
	fields, err := p.client.HGetAll(ctx, key).Result()
	if err != nil {
		p.logger.Error("[callbacks][userinfo] read failed", zap.String("key", key), zap.Error(err))
		return entities.UserInfo{}, fmt.Errorf("read user info %s: %w", userID, err)
	}
	if len(fields) == 0 {
		p.logger.Debug("[callbacks][userinfo] no user info", zap.String("user_id", userID))
	}
	return entities.UserInfo{Name: fields["name"], Phone: fields["phone"]}, nil
}
