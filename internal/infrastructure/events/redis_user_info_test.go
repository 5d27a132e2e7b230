package events

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeHashes struct {
	hashes map[string]map[string]string
	err    error
	keys   []string
}

func (f *fakeHashes) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return redis.NewMapStringStringResult(nil, f.err)
	}
	fields, ok := f.hashes[key]
	if !ok {
		fields = map[string]string{}
	}
	return redis.NewMapStringStringResult(fields, nil)
}

func TestRedisUserInfoProvider(t *testing.T) {
	store := &fakeHashes{hashes: map[string]map[string]string{
		"payhook:user:u-1": {"name": "Ali Valiyev", "phone": "998901234567", "email": "ignored@example.com"},
	}}
	provider := NewRedisUserInfoProvider(store, "payhook:", zap.NewNop())

	info, err := provider.GetUserInfo(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "Ali Valiyev", info.Name)
	require.Equal(t, "998901234567", info.Phone)
	require.Equal(t, []string{"payhook:user:u-1"}, store.keys)

	missing, err := provider.GetUserInfo(context.Background(), "u-2")
	require.NoError(t, err)
	require.Empty(t, missing.Name)
	require.Empty(t, missing.Phone)

	store.err = errors.New("connection refused")
	_, err = provider.GetUserInfo(context.Background(), "u-1")
	require.ErrorIs(t, err, store.err)
}
