package main

import (
	"errors"
	"log"
	"net/http"
	_ "time/tzdata"

	"payhook/internal/config"
	"payhook/internal/infrastructure/logging"
	"payhook/internal/infrastructure/shutdown"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

// @title           Payhook API
// @version         1.0
// @description     Payment webhooks for Payme, Click and Paynet plus the payment creation endpoint.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @host localhost:8080

// @BasePath  /v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.ServiceName, cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logging.Sync(logger)

	closers := shutdown.New(cfg.HTTP.ShutdownTimeout, logger)

	router, err := buildRouter(cfg, logger, closers)
	if err != nil {
		logger.Fatal("[main] failed to wire the application", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	closers.Add("http", srv.Shutdown)

	go func() {
		logger.Info("[main] listening", zap.String("addr", srv.Addr), zap.String("store", cfg.StoreDriver), zap.String("lock", cfg.LockDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("[main] failed to start the server", zap.Error(err))
		}
	}()

	closers.Wait()
}
