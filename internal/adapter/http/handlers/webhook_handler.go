package handlers

import (
	"net/http"

	"payhook/internal/usecase/webhook"
	"payhook/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxWebhookBody caps a provider delivery; every protocol message is a few KB.
const maxWebhookBody = 1 << 20

var errUnreadableWebhook = pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)

// WebhookHandler adapts one provider processor to gin. The processor owns the
// whole protocol, including status codes and error bodies.
type WebhookHandler struct {
	provider  string
	processor webhook.Processor
	logger    *zap.Logger
}

func NewWebhookHandler(provider string, processor webhook.Processor, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{provider: provider, processor: processor, logger: logger.Named("http")}
}

// Handle godoc
// @Summary      Provider webhook
// @Description  Receives a Payme, Click or Paynet callback and answers in that provider's wire format.
// @Tags         webhooks
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        provider  path  string  true  "payme, click or paynet"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /webhooks/{provider} [post]
func (h *WebhookHandler) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Warn("[webhook][handler] unreadable body", zap.String("provider", h.provider), zap.Error(err))
		c.JSON(errUnreadableWebhook.HTTPStatus, errUnreadableWebhook.ToHTTPError())
		return
	}

	resp := h.processor.Handle(c.Request.Context(), webhook.Request{
		Authorization: c.GetHeader("Authorization"),
		ContentType:   c.GetHeader("Content-Type"),
		Body:          body,
	})
	h.logger.Debug("[webhook][handler] answered",
		zap.String("provider", h.provider), zap.Int("status", resp.StatusCode), zap.Int("body_len", len(body)))

	c.JSON(resp.StatusCode, resp.Body)
}
