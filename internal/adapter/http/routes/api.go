package routes

import (
	"payhook/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathPing     = "/ping"
	PathPayments = "/payments"
	PathWebhooks = "/webhooks"
)

func addPingRoutes(rg *gin.RouterGroup) {
	rg.GET(PathPing, handlers.Ping)
}

func addWebhookRoutes(rg *gin.RouterGroup, webhooks map[string]*handlers.WebhookHandler) {
	group := rg.Group(PathWebhooks)
	for provider, h := range webhooks {
		group.POST("/"+provider, h.Handle)
	}
}

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("", paymentHandler.CreatePayment)
		payments.GET("/:id", paymentHandler.GetPaymentByID)
	}
}
