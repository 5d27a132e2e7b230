package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"payhook/internal/config"
	"payhook/internal/domain/entities"
	"payhook/internal/infrastructure/events"
	"payhook/internal/infrastructure/lock"
	"payhook/internal/infrastructure/shutdown"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildRouter_PaymeFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFrom(map[string]string{
		"PAYME_KEY":    "merchant-key",
		"FISCAL_CODE":  "10899002001000000",
		"STORE_DRIVER": "memory",
		"LOCK_DRIVER":  "memory",
	})
	require.NoError(t, err)

	router, err := buildRouter(cfg, zap.NewNop(), shutdown.New(time.Second, nil))
	require.NoError(t, err)

	do := func(method, path, auth, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/v1/payments", "", `{"user_id":"u-1","plan_id":"pro","amount":5000000}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte("Paycom:merchant-key"))
	check := `{"id":1,"method":"CheckPerformTransaction","params":{"amount":5000000,"account":{"order_id":"` + created.ID + `"}}}`

	w = do(http.MethodPost, "/v1/webhooks/payme", "", check)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"code":-32504`)

	w = do(http.MethodPost, "/v1/webhooks/payme", auth, check)
	require.Equal(t, http.StatusOK, w.Code)
	var answer struct {
		Result struct {
			Allow  bool            `json:"allow"`
			Detail json.RawMessage `json:"detail"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &answer))
	require.True(t, answer.Result.Allow)
	require.Contains(t, string(answer.Result.Detail), `"receipt_type":0`)

	w = do(http.MethodPost, "/v1/webhooks/click", "", `{}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildProcessors_OnlyConfigured(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"PAYNET_USERNAME": "paynet",
		"PAYNET_PASSWORD": "secret",
		"PAYNET_TIMEZONE": "Mars/Olympus",
	})
	require.NoError(t, err)

	callbacks, err := buildCallbacks(cfg, nil, zap.NewNop(), shutdown.New(time.Second, nil))
	require.NoError(t, err)
	require.Nil(t, callbacks.Fiscal)
	require.Nil(t, callbacks.UserInfo)

	repo, err := buildStore(cfg, zap.NewNop(), shutdown.New(time.Second, nil))
	require.NoError(t, err)

	processors, err := buildProcessors(cfg, repo, callbacks, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, processors, 1)
	require.Contains(t, processors, entities.ProviderPaynet)
}

func TestBuildCallbacks_UserInfoFromRedis(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"LOCK_DRIVER": "redis",
		"REDIS_ADDRS": "127.0.0.1:6379",
	})
	require.NoError(t, err)

	// the client dials lazily; nothing is sent here
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: cfg.Redis.Addrs})
	defer client.Close()

	callbacks, err := buildCallbacks(cfg, client, zap.NewNop(), shutdown.New(time.Second, nil))
	require.NoError(t, err)
	require.IsType(t, &events.RedisUserInfoProvider{}, callbacks.UserInfo)
	require.IsType(t, &lock.RedisLocker{}, buildLocker(cfg, client, zap.NewNop()))
	require.IsType(t, &lock.MemoryLocker{}, buildLocker(cfg, nil, zap.NewNop()))
}
