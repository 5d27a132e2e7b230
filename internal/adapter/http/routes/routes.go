package routes

import (
	_ "payhook/docs"
	"payhook/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Handlers groups what the router exposes. Webhooks is keyed by provider name
// and only holds the providers that are configured.
type Handlers struct {
	Payments *handlers.PaymentHandler
	Webhooks map[string]*handlers.WebhookHandler
}

// NewRouter builds the gin engine with middlewares, docs and every /v1 route.
func NewRouter(logger *zap.Logger, h Handlers) *gin.Engine {
	router := gin.New()
	setMiddlewares(router, logger)

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addWebhookRoutes(v1, h.Webhooks)
	if h.Payments != nil {
		addPaymentRoutes(v1, h.Payments)
	}
	return router
}

func setMiddlewares(router *gin.Engine, logger *zap.Logger) {
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("[http][router] recovered from panic", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatus(500)
	}))
}
