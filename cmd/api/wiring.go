package main

import (
	"context"
	"fmt"
	"time"

	"payhook/internal/adapter/http/handlers"
	"payhook/internal/adapter/http/routes"
	"payhook/internal/adapter/persistence/repository"
	"payhook/internal/config"
	"payhook/internal/domain/entities"
	"payhook/internal/infrastructure/database"
	"payhook/internal/infrastructure/events"
	"payhook/internal/infrastructure/lock"
	"payhook/internal/infrastructure/payments"
	"payhook/internal/infrastructure/shutdown"
	"payhook/internal/usecase"
	"payhook/internal/usecase/interfaces"
	"payhook/internal/usecase/webhook"
	"payhook/internal/usecase/webhook/click"
	"payhook/internal/usecase/webhook/payme"
	"payhook/internal/usecase/webhook/paynet"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	connectTimeout    = 10 * time.Second
)

func buildRouter(cfg config.Config, logger *zap.Logger, closers *shutdown.Manager) (*gin.Engine, error) {
	repo, err := buildStore(cfg, logger, closers)
	if err != nil {
		return nil, err
	}
	redisClient, err := buildRedis(cfg, closers)
	if err != nil {
		return nil, err
	}
	locker := buildLocker(cfg, redisClient, logger)
	callbacks, err := buildCallbacks(cfg, redisClient, logger, closers)
	if err != nil {
		return nil, err
	}
	processors, err := buildProcessors(cfg, repo, callbacks, logger)
	if err != nil {
		return nil, err
	}

	webhooks := make(map[string]*handlers.WebhookHandler, len(processors))
	for provider, p := range processors {
		webhooks[string(provider)] = handlers.NewWebhookHandler(string(provider), p, logger)
	}

	return routes.NewRouter(logger, routes.Handlers{
		Payments: handlers.NewPaymentHandler(usecase.NewPaymentUseCase(repo, locker, logger), logger),
		Webhooks: webhooks,
	}), nil
}

func buildStore(cfg config.Config, logger *zap.Logger, closers *shutdown.Manager) (interfaces.ITransactionRepository, error) {
	switch cfg.StoreDriver {
	case config.StoreDynamoDB:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		client, err := database.ConnectDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, fmt.Errorf("dynamodb: %w", err)
		}
		return repository.NewTransactionDynamoRepository(client, cfg.DynamoDB.Table), nil

	case config.StoreMySQL:
		db, err := database.NewMySQL(cfg.MySQL)
		if err != nil {
			return nil, fmt.Errorf("mysql: %w", err)
		}
		if cfg.MySQL.AutoMigrate {
			if err := database.AutoMigrate(db); err != nil {
				return nil, fmt.Errorf("mysql migrate: %w", err)
			}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		closers.Add("mysql", func(context.Context) error { return sqlDB.Close() })
		return repository.NewTransactionGormRepository(db), nil

	default:
		logger.Warn("[main] using the in-memory store; transactions are lost on restart")
		return repository.NewTransactionMemoryRepository(), nil
	}
}

// buildRedis returns nil when LOCK_DRIVER is not redis.
func buildRedis(cfg config.Config, closers *shutdown.Manager) (redis.UniversalClient, error) {
	if cfg.LockDriver != config.LockRedis {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	closers.Add("redis", func(context.Context) error { return client.Close() })
	return client, nil
}

func buildLocker(cfg config.Config, client redis.UniversalClient, logger *zap.Logger) interfaces.ILocker {
	if client == nil {
		return lock.NewMemoryLocker()
	}
	return lock.NewRedisLocker(client, logger, cfg.Redis.KeyPrefix, cfg.Redis.LockTTL)
}

func buildCallbacks(cfg config.Config, client redis.UniversalClient, logger *zap.Logger, closers *shutdown.Manager) (interfaces.Callbacks, error) {
	callbacks := interfaces.Callbacks{
		Passwords: events.NewLogPasswordRotator(logger),
	}

	if client != nil {
		callbacks.UserInfo = events.NewRedisUserInfoProvider(client, cfg.Redis.KeyPrefix, logger)
	} else {
		logger.Info("[main] LOCK_DRIVER is not redis; paynet GetInformation omits name and phone")
	}

	if cfg.Kafka.Enabled() {
		publisher := events.NewKafkaPaymentCallbacks(logger, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers.Add("kafka", func(context.Context) error { return publisher.Close() })
		callbacks.Payments = publisher
	} else {
		logger.Warn("[main] KAFKA_BROKERS not set; entitlement changes are only logged")
		callbacks.Payments = events.NewLogPaymentCallbacks(logger)
	}

	if cfg.Fiscal.Enabled() {
		fiscal, err := payments.NewFiscalReceiptBuilder(cfg.Fiscal)
		if err != nil {
			return interfaces.Callbacks{}, err
		}
		callbacks.Fiscal = fiscal
	}
	return callbacks, nil
}

func buildProcessors(cfg config.Config, repo interfaces.ITransactionRepository, callbacks interfaces.Callbacks, logger *zap.Logger) (map[entities.Provider]webhook.Processor, error) {
	processors := make(map[entities.Provider]webhook.Processor, 3)

	if cfg.Payme.Enabled() {
		p, err := payme.NewProcessor(payme.Config{Login: cfg.Payme.Login, Key: cfg.Payme.Key}, repo, callbacks, logger)
		if err != nil {
			return nil, fmt.Errorf("payme: %w", err)
		}
		processors[entities.ProviderPayme] = p
	}

	if cfg.Click.Enabled() {
		p, err := click.NewProcessor(click.Config{ServiceID: cfg.Click.ServiceID, SecretKey: cfg.Click.SecretKey}, repo, callbacks, logger)
		if err != nil {
			return nil, fmt.Errorf("click: %w", err)
		}
		processors[entities.ProviderClick] = p
	}

	if cfg.Paynet.Enabled() {
		loc, err := time.LoadLocation(cfg.Paynet.Location)
		if err != nil {
			logger.Warn("[main] unknown PAYNET_TIMEZONE, using the default", zap.String("timezone", cfg.Paynet.Location), zap.Error(err))
			loc = nil
		}
		p, err := paynet.NewProcessor(paynet.Config{
			Username:  cfg.Paynet.Username,
			Password:  cfg.Paynet.Password,
			ServiceID: cfg.Paynet.ServiceID,
			Location:  loc,
		}, repo, callbacks, logger)
		if err != nil {
			return nil, fmt.Errorf("paynet: %w", err)
		}
		processors[entities.ProviderPaynet] = p
	}

	return processors, nil
}
